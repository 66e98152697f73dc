package models

import "github.com/shopspring/decimal"

// Product is the catalog view of an item as supplied by the product service.
// The cart never re-fetches it; Stock is snapshotted when an entry is created.
type Product struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Category string          `json:"category,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// Validate validates product input used to create a cart entry
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidInput
	}
	if p.Price.IsNegative() {
		return ErrInvalidInput
	}
	return nil
}
