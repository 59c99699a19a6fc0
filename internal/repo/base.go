package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base provides a shared foundation for repositories that may run inside a
// caller-owned transaction.
type Base struct {
	db   *gorm.DB
	inTx bool
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// InTx reports whether the Base is bound to an open transaction.
func (b Base) InTx() bool {
	return b.inTx
}

// Transaction runs fn with a Base bound to a transaction. Calls made while
// already inside a transaction reuse it instead of nesting savepoints.
func (b Base) Transaction(ctx context.Context, fn func(tx Base) error) error {
	if b.inTx {
		return fn(b)
	}
	return b.DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Base{db: tx, inTx: true})
	})
}
