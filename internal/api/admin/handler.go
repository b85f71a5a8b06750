package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lorekeeper/internal/domain/stories"
	"lorekeeper/internal/domain/users"
	"lorekeeper/internal/domain/works"
	"lorekeeper/internal/store"
)

type KindStats struct {
	Sets        int64 `json:"sets"`
	Items       int64 `json:"items"`
	Memberships int64 `json:"memberships"`
}

type AdminStats struct {
	TotalUsers int64     `json:"total_users"`
	Stories    KindStats `json:"stories"`
	Works      KindStats `json:"works"`
	Relations  int64     `json:"relations"`
}

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

func (h *Handler) countLive(c *gin.Context, table string, dst *int64) error {
	return store.Live(h.db.WithContext(c.Request.Context()).Table(table)).Count(dst).Error
}

// AdminDashboard: GET /api/admin/dashboard
func (h *Handler) AdminDashboard(c *gin.Context) {
	var stats AdminStats
	if err := h.db.WithContext(c.Request.Context()).Model(&users.User{}).Count(&stats.TotalUsers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	counts := []struct {
		table string
		dst   *int64
	}{
		{stories.StorySetTable, &stats.Stories.Sets},
		{stories.StoryTable, &stats.Stories.Items},
		{stories.StorySetRelTable, &stats.Stories.Memberships},
		{stories.StoryRelationTable, &stats.Relations},
		{works.WorksSetTable, &stats.Works.Sets},
		{works.WorkTable, &stats.Works.Items},
		{works.WorksRelationTable, &stats.Works.Memberships},
	}
	for _, n := range counts {
		if err := h.countLive(c, n.table, n.dst); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
	}
	c.JSON(http.StatusOK, stats)
}
