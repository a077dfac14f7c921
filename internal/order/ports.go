package order

import (
	"context"

	"github.com/safar/go-market-server/internal/cart"
	"github.com/safar/go-market-server/internal/models"
)

// CartStore is the key-value collaborator holding carts. Get returns nil
// for an absent cart; Delete reports whether anything was removed.
type CartStore interface {
	Get(ctx context.Context, cartID string) (*cart.Cart, error)
	Delete(ctx context.Context, cartID string) (bool, error)
}

type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
}

type ShippingTypeReader interface {
	GetByID(ctx context.Context, id int64) (*models.ShippingType, error)
	GetAll(ctx context.Context) ([]*models.ShippingType, error)
}

type OrderWriter interface {
	Create(ctx context.Context, order *models.Order) error
}

type OrderReader interface {
	ByID(ctx context.Context, id int64, buyerEmail string) (*models.Order, error)
	ByBuyer(ctx context.Context, buyerEmail string) ([]*models.Order, error)
}

// Tx is one unit of work: repositories bound to a single transaction.
// Complete commits everything staged and returns total rows affected;
// Rollback is safe to call after Complete.
type Tx interface {
	Products() ProductReader
	ShippingTypes() ShippingTypeReader
	Orders() OrderWriter
	Complete(ctx context.Context) (int64, error)
	Rollback() error
}

type TxFactory interface {
	Begin(ctx context.Context) (Tx, error)
}
