package catalog

import (
	"time"

	"gorm.io/gorm"
)

// View limits which items a read returns. The zero value returns every live item.
type View struct {
	// PublishedBy hides items whose onlineAt is unset or later than it.
	PublishedBy *time.Time
}

// Everything is the admin view.
func Everything() View { return View{} }

// PublishedAt is the public view at now.
func PublishedAt(now time.Time) View { return View{PublishedBy: &now} }

// Allows reports whether an item with the given onlineAt is visible.
func (v View) Allows(onlineAt *time.Time) bool {
	if v.PublishedBy == nil {
		return true
	}
	return onlineAt != nil && !onlineAt.After(*v.PublishedBy)
}

// Scope filters a query on the item table. prefix is the table alias with its dot, or "".
func (v View) Scope(prefix string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if v.PublishedBy == nil {
			return q
		}
		return q.Where(prefix+"online_at IS NOT NULL AND "+prefix+"online_at <= ?", *v.PublishedBy)
	}
}
