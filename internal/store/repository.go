// Package store is the soft-delete data access layer. Reads only see rows with
// is_deleted = false unless a caller opts in to deleted rows explicitly.
package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"lorekeeper/internal/domain/apperr"
	"lorekeeper/internal/platform/dbctx"
	"lorekeeper/internal/platform/logger"
)

// Query narrows a list call. Scopes are gorm scopes applied before ordering and paging.
type Query struct {
	Scopes         []func(*gorm.DB) *gorm.DB
	Order          string
	Page           Page
	IncludeDeleted bool
}

type Repository[T any] struct {
	db   *gorm.DB
	log  *logger.Logger
	name string
}

// New returns a repository over T's table. name is used in error messages ("story 4 not found").
func New[T any](db *gorm.DB, baseLog *logger.Logger, name string) *Repository[T] {
	return &Repository[T]{db: db, log: baseLog.With("repo", name), name: name}
}

// DB is the connection the repository was built with.
func (r *Repository[T]) DB() *gorm.DB { return r.db }

func (r *Repository[T]) model(dbc dbctx.Context) *gorm.DB {
	return dbc.Conn(r.db).Model(new(T))
}

// Active is a query over T restricted to live rows.
func (r *Repository[T]) Active(dbc dbctx.Context) *gorm.DB {
	return Live(r.model(dbc))
}

// Live restricts q to rows that are not soft-deleted.
func Live(q *gorm.DB) *gorm.DB {
	return q.Where("is_deleted = ?", false)
}

// Create inserts rec. A unique index violation is ErrConflict.
func (r *Repository[T]) Create(dbc dbctx.Context, rec *T) error {
	err := dbc.Conn(r.db).Create(rec).Error
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: %s already exists", apperr.ErrConflict, r.name)
	}
	return err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}

// FindActive returns the first live row matching the conditions.
func (r *Repository[T]) FindActive(dbc dbctx.Context, query interface{}, args ...interface{}) (*T, error) {
	var rec T
	err := r.Active(dbc).Where(query, args...).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", apperr.ErrNotFound, r.name)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get returns the live row with the given id.
func (r *Repository[T]) Get(dbc dbctx.Context, id uint) (*T, error) {
	rec, err := r.FindActive(dbc, "id = ?", id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s %d", apperr.ErrNotFound, r.name, id)
	}
	return rec, err
}

// Exists reports whether a live row with id exists.
func (r *Repository[T]) Exists(dbc dbctx.Context, id uint) (bool, error) {
	var n int64
	if err := r.Active(dbc).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListActive returns one page of rows and the total number of rows matching q.
func (r *Repository[T]) ListActive(dbc dbctx.Context, q Query) ([]T, int64, error) {
	base := r.model(dbc)
	if !q.IncludeDeleted {
		base = Live(base)
	}
	base = base.Scopes(q.Scopes...)

	var count int64
	if err := base.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]T, 0)
	find := base.Session(&gorm.Session{})
	if q.Order != "" {
		find = find.Order(q.Order)
	}
	if q.Page.Size > 0 {
		find = find.Offset(q.Page.Offset()).Limit(q.Page.Size)
	}
	if err := find.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, count, nil
}

// ByIDs returns the live rows among ids, in no particular order.
func (r *Repository[T]) ByIDs(dbc dbctx.Context, ids []uint) ([]T, error) {
	rows := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return rows, nil
	}
	if err := r.Active(dbc).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Update applies patch (column -> value) to the live row id.
func (r *Repository[T]) Update(dbc dbctx.Context, id uint, patch map[string]interface{}) error {
	if len(patch) == 0 {
		ok, err := r.Exists(dbc, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s %d", apperr.ErrNotFound, r.name, id)
		}
		return nil
	}
	res := r.Active(dbc).Where("id = ?", id).Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s %d", apperr.ErrNotFound, r.name, id)
	}
	return nil
}

// SoftDelete flags the live row id as deleted.
func (r *Repository[T]) SoftDelete(dbc dbctx.Context, id uint) error {
	n, err := r.SoftDeleteWhere(dbc, "id = ?", id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", apperr.ErrNotFound, r.name, id)
	}
	return nil
}

// SoftDeleteWhere flags every live row matching the condition and returns how many changed.
func (r *Repository[T]) SoftDeleteWhere(dbc dbctx.Context, query interface{}, args ...interface{}) (int64, error) {
	res := r.Active(dbc).Where(query, args...).Updates(map[string]interface{}{
		"is_deleted": true,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Debug("soft deleted", "rows", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

// RequireLive fails with ErrNotFound unless table has a live row with id.
func RequireLive(conn *gorm.DB, table string, id uint, what string) error {
	var n int64
	if err := Live(conn.Table(table)).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", apperr.ErrNotFound, what, id)
	}
	return nil
}
