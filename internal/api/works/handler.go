package works

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"lorekeeper/internal/api/common"
	"lorekeeper/internal/catalog"
	"lorekeeper/internal/domain/content"
	"lorekeeper/internal/domain/works"
	"lorekeeper/internal/infra/assets"
	"lorekeeper/internal/platform/dbctx"
	"lorekeeper/internal/platform/logger"
	"lorekeeper/internal/store"
)

type Handler struct {
	Sets *common.SetHandler[works.WorksSet, *works.WorksSet]

	svc    *catalog.Works
	assets assets.Resolver
	log    *logger.Logger
}

func NewHandler(svc *catalog.Works, r assets.Resolver, baseLog *logger.Logger) *Handler {
	return &Handler{
		Sets:   common.NewSetHandler(svc.Sets, svc.Members, svc.Items, r, baseLog.With("kind", "works")),
		svc:    svc,
		assets: r,
		log:    baseLog.With("handler", "Works"),
	}
}

func tagScope(tag string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(`tags LIKE ? ESCAPE '\'`, works.TagPattern(tag))
	}
}

// ------------------------------
// GET /works?page=&size=&tag=&all=1
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	page := common.PageQuery(c)
	q := store.Query{Page: page}
	if tag := strings.TrimSpace(c.Query("tag")); tag != "" {
		q.Scopes = append(q.Scopes, tagScope(tag))
	}
	q.Scopes = append(q.Scopes, common.ListView(c).Scope(""))

	rows, count, err := h.svc.Items.List(dbctx.New(c.Request.Context()), q)
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to load works")
		return
	}
	out := WorkListDTO{Items: make([]WorkDTO, 0, len(rows)), Envelope: page.Envelope(count)}
	for _, w := range rows {
		out.Items = append(out.Items, toWorkDTO(w, h.assets))
	}
	c.JSON(http.StatusOK, out)
}

// GET /works/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	h.respondWork(c, dbctx.New(c.Request.Context()), id, http.StatusOK)
}

func (h *Handler) respondWork(c *gin.Context, dbc dbctx.Context, id uint, status int) {
	w, err := h.svc.Items.Visible(dbc, id, common.ViewOf(c))
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to load work")
		return
	}
	setIDs, err := h.svc.Members.SetsOf(dbc, id)
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to load work")
		return
	}
	out := toWorkDTO(*w, h.assets)
	out.SetIDs = setIDs
	c.JSON(status, out)
}

// POST /works
func (h *Handler) Create(c *gin.Context) {
	var req CreateWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := works.Work{Name: req.Name, Description: req.Description, Tags: req.Tags}
	rec.Pictures = req.Pictures
	rec.OnlineAt = req.OnlineAt

	dbc := dbctx.New(c.Request.Context())
	if err := h.svc.Items.Create(dbc, &rec, req.SetIDs); err != nil {
		common.RespondError(c, h.log, err, "Failed to create work")
		return
	}
	h.respondWork(c, dbc, rec.ID, http.StatusCreated)
}

// PUT /works/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req UpdateWorkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := works.WorkPatch{
		ItemPatch:   content.ItemPatch{Pictures: req.Pictures, OnlineAt: req.OnlineAt, ClearOnlineAt: req.ClearOnlineAt},
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
	}
	dbc := dbctx.New(c.Request.Context())
	if err := h.svc.Items.Update(dbc, id, patch); err != nil {
		common.RespondError(c, h.log, err, "Failed to update work")
		return
	}
	h.respondWork(c, dbc, id, http.StatusOK)
}

// DELETE /works/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Items.Delete(dbctx.New(c.Request.Context()), id); err != nil {
		common.RespondError(c, h.log, err, "Failed to delete work")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Work deleted"})
}

// POST /works-set-rel/add
func (h *Handler) AddToSet(c *gin.Context) {
	var req SetRelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	relID, err := h.svc.Members.Attach(dbctx.New(c.Request.Context()), req.WorksID, req.SetID, req.Sort)
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to add work to collection")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": relID})
}

// POST /works-set-rel/remove
func (h *Handler) RemoveFromSet(c *gin.Context) {
	var req SetRelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Members.Detach(dbctx.New(c.Request.Context()), req.WorksID, req.SetID); err != nil {
		common.RespondError(c, h.log, err, "Failed to remove work from collection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Work removed from collection"})
}

// POST /works-set-rel/order
func (h *Handler) Reorder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orders := make([]catalog.SortUpdate, 0, len(req.WorksOrders))
	for _, o := range req.WorksOrders {
		orders = append(orders, catalog.SortUpdate{ItemID: o.WorksID, Sort: o.Sort})
	}
	if err := h.svc.Members.Reorder(dbctx.New(c.Request.Context()), req.SetID, orders); err != nil {
		common.RespondError(c, h.log, err, "Failed to reorder works")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated"})
}
