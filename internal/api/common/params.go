package common

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lorekeeper/internal/catalog"
	"lorekeeper/internal/domain/users"
	"lorekeeper/internal/store"
)

// ParseID reads a positive integer path parameter. On failure it has already
// answered 400.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// PageQuery reads ?page= and ?size=, clamped by store.NewPage.
func PageQuery(c *gin.Context) store.Page {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return store.NewPage(page, size)
}

// BoolQuery treats "1" and "true" as set.
func BoolQuery(c *gin.Context, key string) bool {
	switch c.Query(key) {
	case "1", "true":
		return true
	}
	return false
}

// IsAdmin reports whether the request carried a valid admin token.
func IsAdmin(c *gin.Context) bool {
	return c.GetString("role") == users.RoleAdmin
}

// ViewOf is the item view for the caller: admins see drafts, everyone else only
// published items.
func ViewOf(c *gin.Context) catalog.View {
	if IsAdmin(c) {
		return catalog.Everything()
	}
	return catalog.PublishedAt(time.Now())
}

// ListView is ViewOf for list endpoints, where admins opt in to drafts with ?all=1.
func ListView(c *gin.Context) catalog.View {
	if IsAdmin(c) && BoolQuery(c, "all") {
		return catalog.Everything()
	}
	return catalog.PublishedAt(time.Now())
}
