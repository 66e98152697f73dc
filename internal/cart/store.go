package cart

import (
	"sync"

	"bakery-storefront/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store owns the cart entries of one session and keeps every entry within
// 1 <= quantity <= stock limit. Exceeding stock or touching an unknown product
// is a silent no-op.
type Store struct {
	mu      sync.Mutex
	entries []models.CartEntry
	open    bool
	logger  *zap.Logger
}

// NewStore creates an empty cart store
func NewStore(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{logger: logger}
}

// AddItem adds one unit of product to the cart. An existing entry is
// incremented up to product.Stock; a new entry starts at quantity 1 with the
// stock snapshotted as its limit. The cart is marked open either way.
func (s *Store) AddItem(product models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = true

	if i := s.indexOf(product.ID); i >= 0 {
		entry := &s.entries[i]
		if entry.Quantity >= product.Stock {
			s.logger.Debug("cart item at stock limit",
				zap.Int("product_id", product.ID),
				zap.Int("quantity", entry.Quantity),
				zap.Int("stock", product.Stock))
			return
		}
		entry.Quantity = min(entry.Quantity+1, product.Stock)
		s.logger.Debug("incremented cart item",
			zap.Int("product_id", product.ID),
			zap.Int("quantity", entry.Quantity))
		return
	}

	if product.Stock < 1 {
		s.logger.Debug("product out of stock, not added", zap.Int("product_id", product.ID))
		return
	}

	s.entries = append(s.entries, models.CartEntry{
		ProductID:  product.ID,
		Name:       product.Name,
		UnitPrice:  product.Price,
		Quantity:   1,
		StockLimit: product.Stock,
	})
	s.logger.Debug("added cart item", zap.Int("product_id", product.ID))
}

// RemoveItem deletes the entry for productID if present
func (s *Store) RemoveItem(productID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remove(productID)
}

// SetQuantity sets the quantity of an existing entry. Values below 1 remove
// the entry, values above the stock limit are clamped, unknown products are ignored.
func (s *Store) SetQuantity(productID, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity < 1 {
		s.remove(productID)
		return
	}

	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.entries[i].Quantity = min(quantity, s.entries[i].StockLimit)
	s.logger.Debug("set cart item quantity",
		zap.Int("product_id", productID),
		zap.Int("requested", quantity),
		zap.Int("quantity", s.entries[i].Quantity))
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.logger.Debug("cleared cart")
}

// Total returns the sum of unit price times quantity over all entries
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total()
}

// Count returns the total number of units in the cart
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, entry := range s.entries {
		count += entry.Quantity
	}
	return count
}

// Len returns the number of distinct entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IsEmpty returns true if the cart has no entries
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Items returns a copy of the entries in insertion order
func (s *Store) Items() []models.CartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.CartEntry, len(s.entries))
	copy(items, s.entries)
	return items
}

// Entry returns the entry for productID
func (s *Store) Entry(productID int) (models.CartEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(productID); i >= 0 {
		return s.entries[i], true
	}
	return models.CartEntry{}, false
}

// Summary returns a consistent snapshot of items, total, count and open state
func (s *Store) Summary() models.CartSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]models.CartEntry, len(s.entries))
	copy(items, s.entries)
	count := 0
	for _, entry := range s.entries {
		count += entry.Quantity
	}
	return models.CartSummary{
		Items: items,
		Total: s.total(),
		Count: count,
		Open:  s.open,
	}
}

// IsOpen reports whether the cart panel is shown
func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Toggle flips the open state and returns the new value
func (s *Store) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = !s.open
	return s.open
}

// Close marks the cart panel closed
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
}

func (s *Store) total() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range s.entries {
		total = total.Add(entry.Subtotal())
	}
	return total
}

func (s *Store) indexOf(productID int) int {
	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) remove(productID int) {
	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.logger.Debug("removed cart item", zap.Int("product_id", productID))
}
