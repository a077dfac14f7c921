package store

import (
	"context"
	"database/sql"
	"fmt"
)

// UnitOfWork scopes one transaction to one inbound request. Repository
// accessors are lazily created and memoized for the lifetime of the
// instance; every write they stage lands in the same transaction and
// becomes visible only when Complete commits. The underlying connection
// must never be shared across concurrent requests.
type UnitOfWork struct {
	tx       *sql.Tx
	affected int64
	done     bool

	products *ProductRepository
	brands   *BrandRepository
	catgs    *CategoryRepository
	shipping *ShippingTypeRepository
	orders   *OrderRepository
}

func Begin(ctx context.Context, db *sql.DB) (*UnitOfWork, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &UnitOfWork{tx: tx}, nil
}

func (u *UnitOfWork) track(n int64) {
	u.affected += n
}

func (u *UnitOfWork) Products() *ProductRepository {
	if u.products == nil {
		u.products = NewProductRepository(u.tx, u.track)
	}
	return u.products
}

func (u *UnitOfWork) Brands() *BrandRepository {
	if u.brands == nil {
		u.brands = NewBrandRepository(u.tx, u.track)
	}
	return u.brands
}

func (u *UnitOfWork) Categories() *CategoryRepository {
	if u.catgs == nil {
		u.catgs = NewCategoryRepository(u.tx, u.track)
	}
	return u.catgs
}

func (u *UnitOfWork) ShippingTypes() *ShippingTypeRepository {
	if u.shipping == nil {
		u.shipping = NewShippingTypeRepository(u.tx, u.track)
	}
	return u.shipping
}

func (u *UnitOfWork) Orders() *OrderRepository {
	if u.orders == nil {
		u.orders = NewOrderRepository(u.tx, u.track)
	}
	return u.orders
}

// Complete commits every staged change atomically and returns the total
// rows affected across all repositories obtained from this instance. Zero
// or less means nothing was persisted and callers must treat the operation
// as failed.
func (u *UnitOfWork) Complete(ctx context.Context) (int64, error) {
	if u.done {
		return 0, fmt.Errorf("unit of work already completed")
	}
	u.done = true

	if err := u.tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return u.affected, nil
}

// Rollback releases the transaction. Calling it after Complete, or more
// than once, is a safe no-op.
func (u *UnitOfWork) Rollback() error {
	if u.done {
		return nil
	}
	u.done = true

	if err := u.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}

	return nil
}
