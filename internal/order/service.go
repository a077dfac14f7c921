// Package order implements the order-placement workflow and the
// buyer-scoped order queries. All expected business outcomes (missing
// cart, missing product, failed commit) come back as typed errors, never
// as panics; only infrastructure failures propagate wrapped.
package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/safar/go-market-server/internal/cart"
	"github.com/safar/go-market-server/internal/database"
	"github.com/safar/go-market-server/internal/models"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	BuyerEmail     string
	ShippingTypeID int64
	CartID         string
	Address        models.Address
}

type Service struct {
	carts    CartStore
	txf      TxFactory
	orders   OrderReader
	shipping ShippingTypeReader
	log      *slog.Logger
}

func NewService(carts CartStore, txf TxFactory, orders OrderReader, shipping ShippingTypeReader, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		carts:    carts,
		txf:      txf,
		orders:   orders,
		shipping: shipping,
		log:      log,
	}
}

const maxPlaceAttempts = 3

// PlaceOrder resolves the cart into an order aggregate and persists it in
// one unit of work. Each line snapshots the live product's id, name and
// image together with its current price, so later catalog edits never
// touch the order. A missing cart, product or shipping type fails the
// whole operation before anything is persisted. The cart is deleted only
// after a successful commit; a failed delete is logged and the order
// stands.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	c, err := s.carts.Get(ctx, req.CartID)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", req.CartID, err)
	}
	if c == nil || len(c.Items) == 0 {
		return nil, database.ErrCartNotFound
	}

	// Serialization failures and deadlocks abort the whole transaction;
	// re-running it re-reads live prices, so a retry is safe.
	for attempt := 1; ; attempt++ {
		order, err := s.place(ctx, req, c)
		if err != nil && database.IsRetryable(err) && attempt < maxPlaceAttempts {
			s.log.WarnContext(ctx, "retrying order placement",
				"cart_id", req.CartID, "attempt", attempt, "error", err)
			continue
		}
		return order, err
	}
}

func (s *Service) place(ctx context.Context, req PlaceOrderRequest, c *cart.Cart) (*models.Order, error) {
	tx, err := s.txf.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin unit of work: %w", err)
	}
	defer tx.Rollback()

	items := make([]models.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		product, err := tx.Products().GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}

		items = append(items, models.OrderItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			ProductImage: product.Image,
			UnitPrice:    product.Price,
			Quantity:     line.Quantity,
		})
	}

	shippingType, err := tx.ShippingTypes().GetByID(ctx, req.ShippingTypeID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	order := models.NewOrder(req.BuyerEmail, req.Address, shippingType, items, subtotal)

	if err := tx.Orders().Create(ctx, order); err != nil {
		return nil, fmt.Errorf("stage order: %w", err)
	}

	affected, err := tx.Complete(ctx)
	if err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	if affected <= 0 {
		return nil, database.ErrNothingPersisted
	}

	if _, err := s.carts.Delete(ctx, req.CartID); err != nil {
		// The order is already committed; losing the cart cleanup must not
		// undo it. The entry expires on its own and a retry is idempotent.
		s.log.ErrorContext(ctx, "delete cart after order",
			"cart_id", req.CartID, "order_id", order.ID, "error", err)
	}

	return order, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64, buyerEmail string) (*models.Order, error) {
	return s.orders.ByID(ctx, id, buyerEmail)
}

func (s *Service) ListOrders(ctx context.Context, buyerEmail string) ([]*models.Order, error) {
	return s.orders.ByBuyer(ctx, buyerEmail)
}

func (s *Service) ShippingTypes(ctx context.Context) ([]*models.ShippingType, error) {
	return s.shipping.GetAll(ctx)
}
