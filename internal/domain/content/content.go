// Package content holds the column sets shared by story and works rows.
package content

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/domain/hierarchy"
)

// Record is embedded by every soft-deletable table.
type Record struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	IsDeleted bool      `gorm:"not null;default:false;index" json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Collection is a named, ordered, hierarchical grouping of items. ParentID 0 is a root.
type Collection struct {
	Record
	Name        string     `gorm:"not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Cover       string     `json:"cover"`
	Sort        int        `gorm:"not null;default:0" json:"sort"`
	ParentID    uint       `gorm:"not null;default:0;index" json:"parentId"`
	OnlineAt    *time.Time `json:"onlineAt"`
}

func (c Collection) Node() hierarchy.Node {
	return hierarchy.Node{ID: c.ID, ParentID: c.ParentID, Sort: c.Sort, OnlineAt: c.OnlineAt}
}

// Item carries the columns every leaf content row has.
type Item struct {
	Record
	Pictures []string   `gorm:"type:text;serializer:json" json:"pictures"`
	OnlineAt *time.Time `json:"onlineAt"`
}

// Membership attaches an item to a collection at a position.
type Membership struct {
	Record
	SetID uint `gorm:"not null;index" json:"setId"`
	Sort  int  `gorm:"not null;default:0" json:"sort"`
}

// Summary is the short form of an item used when another row points at it.
type Summary struct {
	ID       uint       `json:"id"`
	Title    string     `json:"title"`
	Cover    string     `json:"cover,omitempty"`
	OnlineAt *time.Time `json:"onlineAt,omitempty"`
}

// FirstPicture returns the first picture reference, or "".
func (i Item) FirstPicture() string {
	if len(i.Pictures) == 0 {
		return ""
	}
	return i.Pictures[0]
}

// JSONText encodes v the way the json serializer stores list columns, for use in
// column-map updates that bypass the serializer.
func JSONText(v interface{}) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ItemPatch holds the item columns an update may change. Nil means unchanged.
// ClearOnlineAt resets onlineAt to NULL, taking the item offline.
type ItemPatch struct {
	Pictures      *[]string
	OnlineAt      *time.Time
	ClearOnlineAt bool
}

// Apply writes the set fields into cols.
func (p ItemPatch) Apply(cols map[string]interface{}) error {
	if p.Pictures != nil {
		pics, err := JSONText(*p.Pictures)
		if err != nil {
			return err
		}
		cols["pictures"] = pics
	}
	switch {
	case p.ClearOnlineAt && p.OnlineAt != nil:
		return fmt.Errorf("%w: onlineAt and clearOnlineAt are exclusive", apperr.ErrInvalidArgument)
	case p.ClearOnlineAt:
		cols["online_at"] = nil
	case p.OnlineAt != nil:
		cols["online_at"] = *p.OnlineAt
	}
	return nil
}
