package stories

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lorekeeper/internal/api/common"
	"lorekeeper/internal/catalog"
	"lorekeeper/internal/domain/content"
	"lorekeeper/internal/domain/stories"
	"lorekeeper/internal/infra/assets"
	"lorekeeper/internal/platform/dbctx"
	"lorekeeper/internal/platform/logger"
	"lorekeeper/internal/store"
)

type Handler struct {
	Sets *common.SetHandler[stories.StorySet, *stories.StorySet]

	svc    *catalog.Stories
	assets assets.Resolver
	log    *logger.Logger
}

func NewHandler(svc *catalog.Stories, r assets.Resolver, baseLog *logger.Logger) *Handler {
	return &Handler{
		Sets:   common.NewSetHandler(svc.Sets, svc.Members, svc.Items, r, baseLog.With("kind", "story")),
		svc:    svc,
		assets: r,
		log:    baseLog.With("handler", "Stories"),
	}
}

// ------------------------------
// GET /stories?page=&size=&all=1
// ------------------------------
func (h *Handler) List(c *gin.Context) {
	page := common.PageQuery(c)
	q := store.Query{Page: page}
	q.Scopes = append(q.Scopes, common.ListView(c).Scope(""))

	rows, count, err := h.svc.Items.List(dbctx.New(c.Request.Context()), q)
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to load stories")
		return
	}
	out := StoryListDTO{Items: make([]StoryDTO, 0, len(rows)), Envelope: page.Envelope(count)}
	for _, s := range rows {
		out.Items = append(out.Items, toStoryDTO(s, h.assets))
	}
	c.JSON(http.StatusOK, out)
}

// GET /stories/:id
func (h *Handler) Get(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	h.respondStory(c, dbctx.New(c.Request.Context()), id, http.StatusOK)
}

func (h *Handler) respondStory(c *gin.Context, dbc dbctx.Context, id uint, status int) {
	s, err := h.svc.Items.Visible(dbc, id, common.ViewOf(c))
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to load story")
		return
	}
	setIDs, err := h.svc.Members.SetsOf(dbc, id)
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to load story")
		return
	}
	out := toStoryDTO(*s, h.assets)
	out.SetIDs = setIDs
	c.JSON(status, out)
}

// POST /stories
func (h *Handler) Create(c *gin.Context) {
	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := stories.Story{Title: req.Title, Content: req.Content}
	rec.Pictures = req.Pictures
	rec.OnlineAt = req.OnlineAt

	dbc := dbctx.New(c.Request.Context())
	if err := h.svc.Items.Create(dbc, &rec, req.SetIDs); err != nil {
		common.RespondError(c, h.log, err, "Failed to create story")
		return
	}
	h.respondStory(c, dbc, rec.ID, http.StatusCreated)
}

// PUT /stories/:id
func (h *Handler) Update(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req UpdateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := stories.StoryPatch{
		ItemPatch: content.ItemPatch{Pictures: req.Pictures, OnlineAt: req.OnlineAt, ClearOnlineAt: req.ClearOnlineAt},
		Title:     req.Title,
		Content:   req.Content,
	}
	dbc := dbctx.New(c.Request.Context())
	if err := h.svc.Items.Update(dbc, id, patch); err != nil {
		common.RespondError(c, h.log, err, "Failed to update story")
		return
	}
	h.respondStory(c, dbc, id, http.StatusOK)
}

// DELETE /stories/:id
func (h *Handler) Delete(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Items.Delete(dbctx.New(c.Request.Context()), id); err != nil {
		common.RespondError(c, h.log, err, "Failed to delete story")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story deleted"})
}

// ------------------------------
// collection membership
// ------------------------------

// POST /story-set-rel/add
func (h *Handler) AddToSet(c *gin.Context) {
	var req SetRelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	relID, err := h.svc.Members.Attach(dbctx.New(c.Request.Context()), req.StoryID, req.SetID, req.Sort)
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to add story to collection")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": relID})
}

// POST /story-set-rel/remove
func (h *Handler) RemoveFromSet(c *gin.Context) {
	var req SetRelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Members.Detach(dbctx.New(c.Request.Context()), req.StoryID, req.SetID); err != nil {
		common.RespondError(c, h.log, err, "Failed to remove story from collection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Story removed from collection"})
}

// POST /story-set-rel/order
func (h *Handler) Reorder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	orders := make([]catalog.SortUpdate, 0, len(req.StoryOrders))
	for _, o := range req.StoryOrders {
		orders = append(orders, catalog.SortUpdate{ItemID: o.StoryID, Sort: o.Sort})
	}
	if err := h.svc.Members.Reorder(dbctx.New(c.Request.Context()), req.SetID, orders); err != nil {
		common.RespondError(c, h.log, err, "Failed to reorder stories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order updated"})
}

// ------------------------------
// cross references
// ------------------------------

// GET /stories/:id/relations
func (h *Handler) Relations(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	views, err := h.svc.Relations.List(dbctx.New(c.Request.Context()), id, common.ViewOf(c))
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to load relations")
		return
	}
	out := make([]RelationDTO, 0, len(views))
	for _, v := range views {
		out = append(out, toRelationDTO(v, h.assets))
	}
	c.JSON(http.StatusOK, out)
}

// POST /stories/:id/relations
func (h *Handler) AddRelation(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	var req RelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rel, err := h.svc.Relations.Add(dbctx.New(c.Request.Context()), id, req.RelatedID, req.RelationType, req.Note)
	if err != nil {
		common.RespondError(c, h.log, err, "Failed to add relation")
		return
	}
	c.JSON(http.StatusCreated, rel)
}

// DELETE /story-relations/:id
func (h *Handler) RemoveRelation(c *gin.Context) {
	id, ok := common.ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Relations.Remove(dbctx.New(c.Request.Context()), id); err != nil {
		common.RespondError(c, h.log, err, "Failed to remove relation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Relation removed"})
}
