package catalog

import (
	"fmt"

	"gorm.io/gorm"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/domain/content"
	"lorekeeper/internal/platform/dbctx"
	"lorekeeper/internal/platform/logger"
	"lorekeeper/internal/store"
)

// Patch is a partial update that knows its column values.
type Patch interface {
	Columns() (map[string]interface{}, error)
}

type itemMembers interface {
	Attach(dbc dbctx.Context, itemID, setID uint, sort *int) (uint, error)
	DetachAllForItem(dbc dbctx.Context, itemID uint) (int64, error)
}

// DeleteHook runs inside the transaction that deletes an item.
type DeleteHook func(tx dbctx.Context, itemID uint) error

// Items manages the item rows of one Kind.
type Items[I any, PI ItemRow[I]] struct {
	db      *gorm.DB
	log     *logger.Logger
	kind    Kind
	rows    *store.Repository[I]
	members itemMembers
	hooks   []DeleteHook
}

func NewItems[I any, PI ItemRow[I]](db *gorm.DB, baseLog *logger.Logger, kind Kind, members itemMembers) *Items[I, PI] {
	return &Items[I, PI]{
		db:      db,
		log:     baseLog.With("service", "Items", "kind", kind.Name),
		kind:    kind,
		rows:    store.New[I](db, baseLog, kind.itemName()),
		members: members,
	}
}

// OnDelete registers fn to run whenever an item is deleted.
func (s *Items[I, PI]) OnDelete(fn DeleteHook) { s.hooks = append(s.hooks, fn) }

// Create inserts rec and attaches it to each of setIDs. Any failure, including an
// unknown set, leaves nothing behind.
func (s *Items[I, PI]) Create(dbc dbctx.Context, rec *I, setIDs []uint) error {
	p := PI(rec)
	if err := p.Validate(); err != nil {
		return err
	}
	p.Base().ID = 0
	p.Base().IsDeleted = false

	return dbc.Transact(s.db, func(tx dbctx.Context) error {
		if err := s.rows.Create(tx, rec); err != nil {
			return err
		}
		seen := make(map[uint]struct{}, len(setIDs))
		for _, setID := range setIDs {
			if _, dup := seen[setID]; dup {
				continue
			}
			seen[setID] = struct{}{}
			if _, err := s.members.Attach(tx, p.Base().ID, setID, nil); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Items[I, PI]) Update(dbc dbctx.Context, id uint, patch Patch) error {
	cols, err := patch.Columns()
	if err != nil {
		return err
	}
	return s.rows.Update(dbc, id, cols)
}

// Delete soft-deletes the item, its memberships and whatever the delete hooks cover.
func (s *Items[I, PI]) Delete(dbc dbctx.Context, id uint) error {
	return dbc.Transact(s.db, func(tx dbctx.Context) error {
		if err := s.rows.SoftDelete(tx, id); err != nil {
			return err
		}
		n, err := s.members.DetachAllForItem(tx, id)
		if err != nil {
			return err
		}
		for _, hook := range s.hooks {
			if err := hook(tx, id); err != nil {
				return err
			}
		}
		s.log.Info("item deleted", "id", id, "memberships", n)
		return nil
	})
}

func (s *Items[I, PI]) Get(dbc dbctx.Context, id uint) (*I, error) {
	return s.rows.Get(dbc, id)
}

// Visible is Get for a reader limited by view. Items the view hides are ErrNotFound.
func (s *Items[I, PI]) Visible(dbc dbctx.Context, id uint, view View) (*I, error) {
	rec, err := s.rows.Get(dbc, id)
	if err != nil {
		return nil, err
	}
	if !view.Allows(PI(rec).Base().OnlineAt) {
		return nil, fmt.Errorf("%w: %s %d", apperr.ErrNotFound, s.kind.itemName(), id)
	}
	return rec, nil
}

// List returns one page of live items, newest first unless q says otherwise.
func (s *Items[I, PI]) List(dbc dbctx.Context, q store.Query) ([]I, int64, error) {
	if q.Order == "" {
		q.Order = "id DESC"
	}
	return s.rows.ListActive(dbc, q)
}

// InOrder loads the live items among ids and returns them in the order of ids.
func (s *Items[I, PI]) InOrder(dbc dbctx.Context, ids []uint) ([]I, error) {
	rows, err := s.rows.ByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]I, len(rows))
	for _, r := range rows {
		byID[PI(&r).Base().ID] = r
	}
	out := make([]I, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Summaries returns the short form of each live item among ids, keyed by id.
func (s *Items[I, PI]) Summaries(dbc dbctx.Context, ids []uint) (map[uint]content.Summary, error) {
	rows, err := s.rows.ByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]content.Summary, len(rows))
	for _, r := range rows {
		sum := PI(&r).Summary()
		out[sum.ID] = sum
	}
	return out, nil
}
