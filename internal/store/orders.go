package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"
	"github.com/safar/go-market-server/internal/database"
	"github.com/safar/go-market-server/internal/models"
	"github.com/safar/go-market-server/internal/query"
)

type OrderRepository struct {
	*Repository[models.Order]
}

func NewOrderRepository(q Queryer, onWrite func(int64)) *OrderRepository {
	repo := &Repository[models.Order]{
		q:     q,
		table: "orders",
		columns: []string{
			"id", "buyer_email", "created_at",
			"street", "city", "department", "postal_code", "country",
			"shipping_type_id", "subtotal", "status", "payment_attempt_id",
		},
		scanRow: scanOrder,
		values: func(o *models.Order) []any {
			var attempt sql.NullString
			if o.PaymentAttemptID != "" {
				attempt = sql.NullString{String: o.PaymentAttemptID, Valid: true}
			}
			return []any{
				o.BuyerEmail, o.CreatedAt,
				o.MailingAddress.Street, o.MailingAddress.City, o.MailingAddress.Department,
				o.MailingAddress.PostalCode, o.MailingAddress.Country,
				o.ShippingTypeID, o.Subtotal, string(o.Status), attempt,
			}
		},
		entityID: func(o *models.Order) int64 { return o.ID },
		setID:    func(o *models.Order, id int64) { o.ID = id },
		notFound: database.ErrOrderNotFound,
		onWrite:  onWrite,
	}
	repo.loaders = map[string]Loader[models.Order]{
		"items":         loadOrderItems,
		"shipping_type": loadOrderShippingTypes,
	}

	return &OrderRepository{repo}
}

func scanOrder(s scanner) (*models.Order, error) {
	order := &models.Order{}
	var status string
	var attempt sql.NullString

	err := s.Scan(
		&order.ID,
		&order.BuyerEmail,
		&order.CreatedAt,
		&order.MailingAddress.Street,
		&order.MailingAddress.City,
		&order.MailingAddress.Department,
		&order.MailingAddress.PostalCode,
		&order.MailingAddress.Country,
		&order.ShippingTypeID,
		&order.Subtotal,
		&status,
		&attempt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatus(status)
	order.PaymentAttemptID = attempt.String

	return order, nil
}

// Create stages the order aggregate: the order row plus one row per item,
// all against the bound queryer. Inside a unit of work nothing is visible
// until Complete commits.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if _, err := r.Add(ctx, order); err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID

		err := r.q.QueryRowContext(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, product_image, unit_price, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id`,
			item.OrderID, item.ProductID, item.ProductName, item.ProductImage,
			item.UnitPrice, item.Quantity).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		r.reportWrite(1)
	}

	return nil
}

// ByID scopes the lookup to the buyer: a mismatched email reads as not
// found, the ownership check is baked into the criteria.
func (r *OrderRepository) ByID(ctx context.Context, id int64, buyerEmail string) (*models.Order, error) {
	spec := query.New().
		Where("id", query.OpEq, id).
		Where("buyer_email", query.OpEq, buyerEmail).
		Include("items").
		Include("shipping_type")

	return r.GetWithSpec(ctx, spec)
}

func (r *OrderRepository) ByBuyer(ctx context.Context, buyerEmail string) ([]*models.Order, error) {
	spec := query.New().
		Where("buyer_email", query.OpEq, buyerEmail).
		OrderByDesc("created_at").
		Include("items").
		Include("shipping_type")

	return r.GetAllWithSpec(ctx, spec)
}

func loadOrderItems(ctx context.Context, q Queryer, orders []*models.Order) error {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, order_id, product_id, product_name, product_image, unit_price, quantity
		 FROM order_items
		 WHERE order_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	byOrder := make(map[int64][]models.OrderItem)
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductImage,
			&item.UnitPrice,
			&item.Quantity,
		)
		if err != nil {
			return err
		}
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, o := range orders {
		items := byOrder[o.ID]
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		o.Items = items
	}

	return nil
}

func loadOrderShippingTypes(ctx context.Context, q Queryer, orders []*models.Order) error {
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ShippingTypeID)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT id, name, description, delivery_time, price
		 FROM shipping_types
		 WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	types := make(map[int64]*models.ShippingType)
	for rows.Next() {
		st := &models.ShippingType{}
		if err := rows.Scan(&st.ID, &st.Name, &st.Description, &st.DeliveryTime, &st.Price); err != nil {
			return err
		}
		types[st.ID] = st
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, o := range orders {
		o.ShippingType = types[o.ShippingTypeID]
	}

	return nil
}
