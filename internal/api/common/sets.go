package common

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lorekeeper/internal/catalog"
	"lorekeeper/internal/domain/content"
	"lorekeeper/internal/domain/hierarchy"
	"lorekeeper/internal/infra/assets"
	"lorekeeper/internal/platform/dbctx"
	"lorekeeper/internal/platform/logger"
	"lorekeeper/internal/store"
)

type memberLister interface {
	Members(dbc dbctx.Context, setID uint, includeDescendants bool, view catalog.View) ([]catalog.Member, error)
}

type summarizer interface {
	Summaries(dbc dbctx.Context, ids []uint) (map[uint]content.Summary, error)
}

// ---------- DTOs

type SetRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Cover         *string    `json:"cover"`
	Sort          *int       `json:"sort"`
	ParentID      *uint      `json:"parentId"`
	OnlineAt      *time.Time `json:"onlineAt"`
	ClearOnlineAt bool       `json:"clearOnlineAt"`
}

func (r SetRequest) patch() catalog.CollectionPatch {
	return catalog.CollectionPatch{
		Name:          r.Name,
		Description:   r.Description,
		Cover:         r.Cover,
		Sort:          r.Sort,
		ParentID:      r.ParentID,
		OnlineAt:      r.OnlineAt,
		ClearOnlineAt: r.ClearOnlineAt,
	}
}

func (r SetRequest) fill(c *content.Collection) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Description != nil {
		c.Description = *r.Description
	}
	if r.Cover != nil {
		c.Cover = *r.Cover
	}
	if r.Sort != nil {
		c.Sort = *r.Sort
	}
	if r.ParentID != nil {
		c.ParentID = *r.ParentID
	}
	c.OnlineAt = r.OnlineAt
}

type SetDTO struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cover       string     `json:"cover"`
	Sort        int        `json:"sort"`
	ParentID    uint       `json:"parentId"`
	OnlineAt    *time.Time `json:"onlineAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Children    []SetDTO   `json:"children"`
}

type MemberDTO struct {
	content.Summary
	Sort int `json:"sort"`
}

type SetDetailDTO struct {
	SetDTO
	Items []MemberDTO `json:"items"`
	store.Envelope
}

// ---------- handler

// SetHandler serves the collection endpoints of one Kind.
type SetHandler[C any, PC catalog.CollectionRow[C]] struct {
	sets    *catalog.Collections[C, PC]
	members memberLister
	items   summarizer
	assets  assets.Resolver
	log     *logger.Logger
}

func NewSetHandler[C any, PC catalog.CollectionRow[C]](
	sets *catalog.Collections[C, PC],
	members memberLister,
	items summarizer,
	r assets.Resolver,
	baseLog *logger.Logger,
) *SetHandler[C, PC] {
	return &SetHandler[C, PC]{
		sets:    sets,
		members: members,
		items:   items,
		assets:  r,
		log:     baseLog.With("handler", "SetHandler"),
	}
}

func (h *SetHandler[C, PC]) toDTO(rec *C) SetDTO {
	b := PC(rec).Base()
	return SetDTO{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Cover:       h.assets.Resolve(b.Cover),
		Sort:        b.Sort,
		ParentID:    b.ParentID,
		OnlineAt:    b.OnlineAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		Children:    []SetDTO{},
	}
}

// toForestDTO walks the forest without recursion.
func (h *SetHandler[C, PC]) toForestDTO(forest []*hierarchy.TreeNode[C]) []SetDTO {
	type frame struct {
		node *hierarchy.TreeNode[C]
		out  *SetDTO
	}
	roots := make([]SetDTO, len(forest))
	stack := make([]frame, 0, len(forest))
	for i, n := range forest {
		roots[i] = h.toDTO(&n.Value)
		stack = append(stack, frame{node: n, out: &roots[i]})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		f.out.Children = make([]SetDTO, len(f.node.Children))
		for i, child := range f.node.Children {
			f.out.Children[i] = h.toDTO(&child.Value)
			stack = append(stack, frame{node: child, out: &f.out.Children[i]})
		}
	}
	return roots
}

// Tree: GET /<sets>
func (h *SetHandler[C, PC]) Tree(c *gin.Context) {
	forest, err := h.sets.Tree(dbctx.New(c.Request.Context()))
	if err != nil {
		RespondError(c, h.log, err, "Failed to load collections")
		return
	}
	c.JSON(http.StatusOK, h.toForestDTO(forest))
}

// Detail: GET /<sets>/:id?page=&size=&includeDescendants=
func (h *SetHandler[C, PC]) Detail(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	dbc := dbctx.New(c.Request.Context())
	page := PageQuery(c)

	rec, err := h.sets.Get(dbc, id)
	if err != nil {
		RespondError(c, h.log, err, "Failed to load collection")
		return
	}
	children, err := h.sets.Children(dbc, id)
	if err != nil {
		RespondError(c, h.log, err, "Failed to load collection")
		return
	}
	members, err := h.members.Members(dbc, id, BoolQuery(c, "includeDescendants"), ViewOf(c))
	if err != nil {
		RespondError(c, h.log, err, "Failed to load collection")
		return
	}

	lo, hi := page.Slice(len(members))
	window := members[lo:hi]
	ids := make([]uint, 0, len(window))
	for _, m := range window {
		ids = append(ids, m.ItemID)
	}
	summaries, err := h.items.Summaries(dbc, ids)
	if err != nil {
		RespondError(c, h.log, err, "Failed to load collection")
		return
	}

	out := SetDetailDTO{
		SetDTO:   h.toDTO(rec),
		Items:    make([]MemberDTO, 0, len(window)),
		Envelope: page.Envelope(int64(len(members))),
	}
	for i := range children {
		out.Children = append(out.Children, h.toDTO(&children[i]))
	}
	for _, m := range window {
		sum, ok := summaries[m.ItemID]
		if !ok {
			continue
		}
		sum.Cover = h.assets.Resolve(sum.Cover)
		out.Items = append(out.Items, MemberDTO{Summary: sum, Sort: m.Sort})
	}
	c.JSON(http.StatusOK, out)
}

// Create: POST /<sets>
func (h *SetHandler[C, PC]) Create(c *gin.Context) {
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var rec C
	req.fill(PC(&rec).Base())
	if err := h.sets.Create(dbctx.New(c.Request.Context()), &rec); err != nil {
		RespondError(c, h.log, err, "Failed to create collection")
		return
	}
	c.JSON(http.StatusCreated, h.toDTO(&rec))
}

// Update: PUT /<sets>/:id
func (h *SetHandler[C, PC]) Update(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	var req SetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dbc := dbctx.New(c.Request.Context())
	if err := h.sets.Update(dbc, id, req.patch()); err != nil {
		RespondError(c, h.log, err, "Failed to update collection")
		return
	}
	rec, err := h.sets.Get(dbc, id)
	if err != nil {
		RespondError(c, h.log, err, "Failed to update collection")
		return
	}
	c.JSON(http.StatusOK, h.toDTO(rec))
}

// Delete: DELETE /<sets>/:id
func (h *SetHandler[C, PC]) Delete(c *gin.Context) {
	id, ok := ParseID(c, "id")
	if !ok {
		return
	}
	if err := h.sets.Delete(dbctx.New(c.Request.Context()), id); err != nil {
		RespondError(c, h.log, err, "Failed to delete collection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted"})
}
