package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New returns a Context without a transaction.
func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// Conn returns the transaction when one is open, otherwise db, bound to the request context.
func (c Context) Conn(db *gorm.DB) *gorm.DB {
	conn := c.Tx
	if conn == nil {
		conn = db
	}
	if c.Ctx != nil {
		conn = conn.WithContext(c.Ctx)
	}
	return conn
}

// Transact runs fn inside a transaction. When c already carries one, the work
// joins it through a savepoint so a failing fn still rolls back only its own writes.
func (c Context) Transact(db *gorm.DB, fn func(tx Context) error) error {
	return c.Conn(db).Transaction(func(tx *gorm.DB) error {
		return fn(Context{Ctx: c.Ctx, Tx: tx})
	})
}
