package catalog

import (
	"fmt"

	"gorm.io/gorm"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/domain/hierarchy"
	"lorekeeper/internal/platform/dbctx"
	"lorekeeper/internal/platform/logger"
	"lorekeeper/internal/store"
)

// SortUpdate moves one item to a new position inside a collection.
type SortUpdate struct {
	ItemID uint `json:"itemId"`
	Sort   int  `json:"sort"`
}

// Member is an item id and its position in a collection.
type Member struct {
	ItemID uint
	Sort   int
}

// Memberships manages the join rows between items and collections of one Kind.
type Memberships[M any, PM MembershipRow[M]] struct {
	db   *gorm.DB
	log  *logger.Logger
	kind Kind
	rows *store.Repository[M]
}

func NewMemberships[M any, PM MembershipRow[M]](db *gorm.DB, baseLog *logger.Logger, kind Kind) *Memberships[M, PM] {
	return &Memberships[M, PM]{
		db:   db,
		log:  baseLog.With("service", "Memberships", "kind", kind.Name),
		kind: kind,
		rows: store.New[M](db, baseLog, kind.Name+" membership"),
	}
}

func (m *Memberships[M, PM]) pair(itemID, setID uint) (string, []interface{}) {
	return m.kind.ItemColumn + " = ? AND set_id = ?", []interface{}{itemID, setID}
}

// Attach adds itemID to setID. A nil sort appends after the current last member.
func (m *Memberships[M, PM]) Attach(dbc dbctx.Context, itemID, setID uint, sort *int) (uint, error) {
	if sort != nil && *sort < 0 {
		return 0, fmt.Errorf("%w: sort must not be negative", apperr.ErrInvalidArgument)
	}

	var id uint
	err := dbc.Transact(m.db, func(tx dbctx.Context) error {
		conn := tx.Conn(m.db)
		if err := store.RequireLive(conn, m.kind.ItemTable, itemID, m.kind.itemName()); err != nil {
			return err
		}
		if err := store.RequireLive(conn, m.kind.SetTable, setID, m.kind.setName()); err != nil {
			return err
		}

		cond, args := m.pair(itemID, setID)
		var n int64
		if err := m.rows.Active(tx).Where(cond, args...).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s %d is already in %s %d", apperr.ErrConflict, m.kind.itemName(), itemID, m.kind.setName(), setID)
		}

		pos := 0
		if sort != nil {
			pos = *sort
		} else {
			next, err := m.nextSort(tx, setID)
			if err != nil {
				return err
			}
			pos = next
		}

		var row M
		p := PM(&row)
		p.Base().SetID = setID
		p.Base().Sort = pos
		p.SetItemRef(itemID)
		if err := m.rows.Create(tx, &row); err != nil {
			return err
		}
		id = p.Base().ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// nextSort is max(sort)+1 over the live members of setID, or 1 for an empty collection.
func (m *Memberships[M, PM]) nextSort(dbc dbctx.Context, setID uint) (int, error) {
	var maxSort int
	row := m.rows.Active(dbc).
		Where("set_id = ?", setID).
		Select("COALESCE(MAX(sort), 0)").
		Row()
	if err := row.Scan(&maxSort); err != nil {
		return 0, err
	}
	return maxSort + 1, nil
}

// Detach removes itemID from setID. Detaching a non-member is ErrNotFound.
func (m *Memberships[M, PM]) Detach(dbc dbctx.Context, itemID, setID uint) error {
	cond, args := m.pair(itemID, setID)
	n, err := m.rows.SoftDeleteWhere(dbc, cond, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d is not in %s %d", apperr.ErrNotFound, m.kind.itemName(), itemID, m.kind.setName(), setID)
	}
	return nil
}

// Reorder writes every sort value in one transaction. If any listed item is not a live
// member of setID nothing is changed.
func (m *Memberships[M, PM]) Reorder(dbc dbctx.Context, setID uint, orders []SortUpdate) error {
	if len(orders) == 0 {
		return fmt.Errorf("%w: no positions given", apperr.ErrInvalidArgument)
	}
	for _, o := range orders {
		if o.ItemID == 0 {
			return fmt.Errorf("%w: item id is required", apperr.ErrInvalidArgument)
		}
		if o.Sort < 0 {
			return fmt.Errorf("%w: sort must not be negative", apperr.ErrInvalidArgument)
		}
	}

	return dbc.Transact(m.db, func(tx dbctx.Context) error {
		if err := store.RequireLive(tx.Conn(m.db), m.kind.SetTable, setID, m.kind.setName()); err != nil {
			return err
		}
		for _, o := range orders {
			cond, args := m.pair(o.ItemID, setID)
			res := m.rows.Active(tx).Where(cond, args...).Update("sort", o.Sort)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s %d is not in %s %d", apperr.ErrNotFound, m.kind.itemName(), o.ItemID, m.kind.setName(), setID)
			}
		}
		return nil
	})
}

// ListByCollection returns the ids of live items in setID, ordered by sort, then item
// onlineAt (unset last), then insertion. With includeDescendants the members of every
// descendant collection follow, in tree display order, each item listed once.
func (m *Memberships[M, PM]) ListByCollection(dbc dbctx.Context, setID uint, includeDescendants bool) ([]uint, error) {
	members, err := m.Members(dbc, setID, includeDescendants, Everything())
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(members))
	for _, mb := range members {
		ids = append(ids, mb.ItemID)
	}
	return ids, nil
}

// Members is ListByCollection with each item's position kept, restricted to the items
// view allows.
func (m *Memberships[M, PM]) Members(dbc dbctx.Context, setID uint, includeDescendants bool, view View) ([]Member, error) {
	conn := dbc.Conn(m.db)
	if err := store.RequireLive(conn, m.kind.SetTable, setID, m.kind.setName()); err != nil {
		return nil, err
	}

	setIDs := []uint{setID}
	if includeDescendants {
		var nodes []hierarchy.Node
		if err := store.Live(conn.Table(m.kind.SetTable)).
			Select("id, parent_id, sort, online_at").
			Scan(&nodes).Error; err != nil {
			return nil, err
		}
		setIDs = hierarchy.Subtree(nodes, setID)
	}

	seen := make(map[uint]struct{})
	out := make([]Member, 0)
	for _, id := range setIDs {
		members, err := m.membersOf(conn, id, view)
		if err != nil {
			return nil, err
		}
		for _, mb := range members {
			if _, dup := seen[mb.ItemID]; dup {
				continue
			}
			seen[mb.ItemID] = struct{}{}
			out = append(out, mb)
		}
	}
	return out, nil
}

func (m *Memberships[M, PM]) membersOf(conn *gorm.DB, setID uint, view View) ([]Member, error) {
	k := m.kind
	var members []Member
	err := conn.Table(k.MembershipTable+" AS m").
		Select("m."+k.ItemColumn+" AS item_id, m.sort AS sort").
		Joins("JOIN "+k.ItemTable+" AS i ON i.id = m."+k.ItemColumn+" AND i.is_deleted = ?", false).
		Where("m.set_id = ? AND m.is_deleted = ?", setID, false).
		Scopes(view.Scope("i.")).
		Order("m.sort ASC").
		Order("CASE WHEN i.online_at IS NULL THEN 1 ELSE 0 END ASC").
		Order("i.online_at ASC").
		Order("m.id ASC").
		Scan(&members).Error
	return members, err
}

// SetsOf returns the ids of the collections itemID is a live member of.
func (m *Memberships[M, PM]) SetsOf(dbc dbctx.Context, itemID uint) ([]uint, error) {
	var ids []uint
	err := m.rows.Active(dbc).
		Where(m.kind.ItemColumn+" = ?", itemID).
		Order("set_id ASC").
		Pluck("set_id", &ids).Error
	return ids, err
}

// DetachAllForItem soft-deletes every live membership of itemID.
func (m *Memberships[M, PM]) DetachAllForItem(dbc dbctx.Context, itemID uint) (int64, error) {
	return m.rows.SoftDeleteWhere(dbc, m.kind.ItemColumn+" = ?", itemID)
}

// DetachAllForSet soft-deletes every live membership in setID.
func (m *Memberships[M, PM]) DetachAllForSet(dbc dbctx.Context, setID uint) (int64, error) {
	return m.rows.SoftDeleteWhere(dbc, "set_id = ?", setID)
}
