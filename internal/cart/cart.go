// Package cart holds the ephemeral shopping cart and its redis-backed
// store. Carts live outside the relational model, keyed by an opaque id.
package cart

import "github.com/shopspring/decimal"

// Item is one cart line. Price, image, brand and category are denormalized
// display fields; the order workflow re-reads the live product and ignores
// them when pricing.
type Item struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image,omitempty"`
	Brand     string          `json:"brand,omitempty"`
	Category  string          `json:"category,omitempty"`
}

type Cart struct {
	ID    string `json:"id"`
	Items []Item `json:"items"`
}

func New(id string) *Cart {
	return &Cart{ID: id, Items: []Item{}}
}
