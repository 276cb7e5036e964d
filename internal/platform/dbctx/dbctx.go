package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context carries the request context and, when the caller is inside a
// transaction, the transaction handle. Repos run on Tx when it is set.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// DB returns the handle a repo should query with: Tx when present, fallback
// otherwise, bound to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	db := c.Tx
	if db == nil {
		db = fallback
	}
	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return db.WithContext(ctx)
}
