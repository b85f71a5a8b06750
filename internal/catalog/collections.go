package catalog

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/domain/hierarchy"
	"lorekeeper/internal/infra/cache"
	"lorekeeper/internal/platform/dbctx"
	"lorekeeper/internal/platform/logger"
	"lorekeeper/internal/store"
)

// CollectionPatch lists the fields an update may change. Nil means unchanged.
type CollectionPatch struct {
	Name          *string
	Description   *string
	Cover         *string
	Sort          *int
	ParentID      *uint
	OnlineAt      *time.Time
	ClearOnlineAt bool
}

func (p CollectionPatch) columns() (map[string]interface{}, error) {
	cols := map[string]interface{}{}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return nil, fmt.Errorf("%w: name must not be empty", apperr.ErrInvalidArgument)
		}
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Cover != nil {
		cols["cover"] = *p.Cover
	}
	if p.Sort != nil {
		cols["sort"] = *p.Sort
	}
	if p.ParentID != nil {
		cols["parent_id"] = *p.ParentID
	}
	switch {
	case p.ClearOnlineAt && p.OnlineAt != nil:
		return nil, fmt.Errorf("%w: onlineAt and clearOnlineAt are exclusive", apperr.ErrInvalidArgument)
	case p.ClearOnlineAt:
		cols["online_at"] = nil
	case p.OnlineAt != nil:
		cols["online_at"] = *p.OnlineAt
	}
	return cols, nil
}

type setDetacher interface {
	DetachAllForSet(dbc dbctx.Context, setID uint) (int64, error)
}

// Collections manages the collection rows of one Kind.
type Collections[C any, PC CollectionRow[C]] struct {
	db      *gorm.DB
	log     *logger.Logger
	kind    Kind
	rows    *store.Repository[C]
	members setDetacher
	cache   cache.Store
	// gen counts invalidations so a reader can tell its rows went stale.
	gen atomic.Uint64
}

// NewCollections wires the service. cache may be nil.
func NewCollections[C any, PC CollectionRow[C]](db *gorm.DB, baseLog *logger.Logger, kind Kind, members setDetacher, c cache.Store) *Collections[C, PC] {
	return &Collections[C, PC]{
		db:      db,
		log:     baseLog.With("service", "Collections", "kind", kind.Name),
		kind:    kind,
		rows:    store.New[C](db, baseLog, kind.setName()),
		members: members,
		cache:   c,
	}
}

func (s *Collections[C, PC]) cacheKey() string { return s.kind.Name + ":sets" }

func (s *Collections[C, PC]) invalidate(dbc dbctx.Context) {
	if s.cache == nil {
		return
	}
	s.gen.Add(1)
	if err := s.cache.Delete(dbc.Ctx, s.cacheKey()); err != nil {
		s.log.Warn("cache invalidate failed", "error", err)
	}
}

// Create inserts rec. A non-zero ParentID must name a live collection.
func (s *Collections[C, PC]) Create(dbc dbctx.Context, rec *C) error {
	base := PC(rec).Base()
	if strings.TrimSpace(base.Name) == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrInvalidArgument)
	}
	base.ID = 0
	base.IsDeleted = false

	err := dbc.Transact(s.db, func(tx dbctx.Context) error {
		if base.ParentID != 0 {
			if err := store.RequireLive(tx.Conn(s.db), s.kind.SetTable, base.ParentID, "parent "+s.kind.setName()); err != nil {
				return err
			}
		}
		return s.rows.Create(tx, rec)
	})
	if err != nil {
		return err
	}
	s.invalidate(dbc)
	return nil
}

// Update applies patch to collection id. A parent change is checked for existence and
// then, as the last step before writing, for cycles.
func (s *Collections[C, PC]) Update(dbc dbctx.Context, id uint, patch CollectionPatch) error {
	cols, err := patch.columns()
	if err != nil {
		return err
	}

	err = dbc.Transact(s.db, func(tx dbctx.Context) error {
		if _, err := s.rows.Get(tx, id); err != nil {
			return err
		}
		if patch.ParentID != nil && *patch.ParentID != 0 {
			parentID := *patch.ParentID
			if parentID != id {
				if err := store.RequireLive(tx.Conn(s.db), s.kind.SetTable, parentID, "parent "+s.kind.setName()); err != nil {
					return err
				}
			}
			parents, err := s.parents(tx)
			if err != nil {
				return err
			}
			if err := hierarchy.CanSetParent(id, parentID, parents); err != nil {
				return err
			}
		}
		return s.rows.Update(tx, id, cols)
	})
	if err != nil {
		return err
	}
	s.invalidate(dbc)
	return nil
}

// Delete soft-deletes collection id and its memberships. It is refused with ErrConflict
// while the collection has live children.
func (s *Collections[C, PC]) Delete(dbc dbctx.Context, id uint) error {
	err := dbc.Transact(s.db, func(tx dbctx.Context) error {
		if _, err := s.rows.Get(tx, id); err != nil {
			return err
		}
		var children int64
		if err := s.rows.Active(tx).Where("parent_id = ?", id).Count(&children).Error; err != nil {
			return err
		}
		if children > 0 {
			return fmt.Errorf("%w: %s %d still has %d child collections", apperr.ErrConflict, s.kind.setName(), id, children)
		}
		if err := s.rows.SoftDelete(tx, id); err != nil {
			return err
		}
		n, err := s.members.DetachAllForSet(tx, id)
		if err != nil {
			return err
		}
		s.log.Info("collection deleted", "id", id, "memberships", n)
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(dbc)
	return nil
}

func (s *Collections[C, PC]) Get(dbc dbctx.Context, id uint) (*C, error) {
	return s.rows.Get(dbc, id)
}

// Children returns the live direct children of id in display order.
func (s *Collections[C, PC]) Children(dbc dbctx.Context, id uint) ([]C, error) {
	rows, _, err := s.rows.ListActive(dbc, store.Query{
		Scopes: []func(*gorm.DB) *gorm.DB{func(q *gorm.DB) *gorm.DB {
			return q.Where("parent_id = ?", id)
		}},
		Order: displayOrder,
	})
	return rows, err
}

const displayOrder = "sort ASC, CASE WHEN online_at IS NULL THEN 1 ELSE 0 END ASC, online_at ASC, id ASC"

// All returns every live collection, served from the cache when possible. Rows loaded
// while a mutation invalidated the cache are returned but not kept.
func (s *Collections[C, PC]) All(dbc dbctx.Context) ([]C, error) {
	gen := s.gen.Load()
	var rows []C
	if s.cache != nil {
		hit, err := s.cache.Get(dbc.Ctx, s.cacheKey(), &rows)
		if err != nil {
			s.log.Warn("cache read failed", "error", err)
		} else if hit {
			return rows, nil
		}
	}

	rows, _, err := s.rows.ListActive(dbc, store.Query{Order: "id ASC"})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(dbc.Ctx, s.cacheKey(), rows); err != nil {
			s.log.Warn("cache write failed", "error", err)
		}
		if s.gen.Load() != gen {
			if err := s.cache.Delete(dbc.Ctx, s.cacheKey()); err != nil {
				s.log.Warn("cache invalidate failed", "error", err)
			}
		}
	}
	return rows, nil
}

// Tree returns the live collections as a forest. Rows caught in a parent loop are
// shown at the root and logged.
func (s *Collections[C, PC]) Tree(dbc dbctx.Context) ([]*hierarchy.TreeNode[C], error) {
	rows, err := s.All(dbc)
	if err != nil {
		return nil, err
	}
	forest, warnings := hierarchy.BuildTree(rows, func(c C) hierarchy.Node {
		return PC(&c).Base().Node()
	})
	for _, w := range warnings {
		s.log.Warn("collection parent loop, shown at root", "id", w.ID, "parent_id", w.ParentID)
	}
	return forest, nil
}

func (s *Collections[C, PC]) parents(dbc dbctx.Context) (map[uint]uint, error) {
	var nodes []hierarchy.Node
	if err := s.rows.Active(dbc).Select("id, parent_id").Scan(&nodes).Error; err != nil {
		return nil, err
	}
	parents := make(map[uint]uint, len(nodes))
	for _, n := range nodes {
		parents[n.ID] = n.ParentID
	}
	return parents, nil
}
