package catalog

import (
	"time"

	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// Category groups products on the till.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Product is a sellable catalog entry. Price is in minor units. Invoices and
// carts snapshot name and price when a line is created; catalog edits never
// reach existing lines.
type Product struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Price      pricing.Money `json:"price"`
	CategoryID string        `json:"categoryId"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
