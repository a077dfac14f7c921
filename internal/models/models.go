package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Brand struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Stock       int             `json:"stock"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	BrandID     int64           `json:"brand_id"`
	CategoryID  int64           `json:"category_id"`
	Brand       *Brand          `json:"brand,omitempty"`
	Category    *Category       `json:"category,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type ShippingType struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	DeliveryTime string          `json:"delivery_time"`
	Price        decimal.Decimal `json:"price"`
}

// Address is a value object embedded in an order. It has no identity of its
// own and is never shared between orders.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	Department string `json:"department"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "Pending"
	OrderStatusPaymentReceived OrderStatus = "PaymentReceived"
	OrderStatusPaymentFailed   OrderStatus = "PaymentFailed"
)

// OrderItem freezes the purchased product at order time. Name, image and unit
// price are snapshots: later catalog edits must not alter historical orders.
type OrderItem struct {
	ID           int64           `json:"id"`
	OrderID      int64           `json:"order_id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductImage string          `json:"product_image,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

type Order struct {
	ID               int64           `json:"id"`
	BuyerEmail       string          `json:"buyer_email"`
	CreatedAt        time.Time       `json:"created_at"`
	MailingAddress   Address         `json:"mailing_address"`
	ShippingTypeID   int64           `json:"shipping_type_id"`
	ShippingType     *ShippingType   `json:"shipping_type,omitempty"`
	Items            []OrderItem     `json:"items,omitempty"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Status           OrderStatus     `json:"status"`
	PaymentAttemptID string          `json:"payment_attempt_id,omitempty"`
}

func NewOrder(buyerEmail string, address Address, shipping *ShippingType, items []OrderItem, subtotal decimal.Decimal) *Order {
	return &Order{
		BuyerEmail:     buyerEmail,
		CreatedAt:      time.Now().UTC(),
		MailingAddress: address,
		ShippingTypeID: shipping.ID,
		ShippingType:   shipping,
		Items:          items,
		Subtotal:       subtotal,
		Status:         OrderStatusPending,
	}
}

// Total is subtotal plus shipping, computed on demand and never persisted.
func (o *Order) Total() decimal.Decimal {
	if o.ShippingType == nil {
		return o.Subtotal
	}
	return o.Subtotal.Add(o.ShippingType.Price)
}
