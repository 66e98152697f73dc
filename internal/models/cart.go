package models

import "github.com/shopspring/decimal"

// CartEntry represents a product line in the shopping cart
type CartEntry struct {
	ProductID  int             `json:"productId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	StockLimit int             `json:"stockLimit"`
}

// Subtotal returns unit price times quantity
func (e CartEntry) Subtotal() decimal.Decimal {
	return e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// AtStockLimit returns true if no more units can be added
func (e CartEntry) AtStockLimit() bool {
	return e.Quantity >= e.StockLimit
}

// CartSummary is a read-only snapshot of the cart
type CartSummary struct {
	Items []CartEntry     `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	Open  bool            `json:"open"`
}
