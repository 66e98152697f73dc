package handlers

import (
	"net/http"
	"strconv"

	"bakery-storefront/internal/middleware"
	"bakery-storefront/internal/models"
	"bakery-storefront/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartHandler exposes the session cart
type CartHandler struct {
	logger *zap.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{logger: logger}
}

// UpdateQuantityRequest sets the quantity of one cart line
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartLine is a cart entry with its derived subtotal and saturation flag
type CartLine struct {
	models.CartEntry
	Subtotal     decimal.Decimal `json:"subtotal"`
	AtStockLimit bool            `json:"atStockLimit"`
}

// CartResponse is the cart as shown in the cart panel
type CartResponse struct {
	Items []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
	Open  bool            `json:"open"`
}

func newCartResponse(summary models.CartSummary) CartResponse {
	lines := make([]CartLine, 0, len(summary.Items))
	for _, entry := range summary.Items {
		lines = append(lines, CartLine{
			CartEntry:    entry,
			Subtotal:     entry.Subtotal(),
			AtStockLimit: entry.AtStockLimit(),
		})
	}
	return CartResponse{
		Items: lines,
		Total: summary.Total,
		Count: summary.Count,
		Open:  summary.Open,
	}
}

// GetCart returns the cart summary
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart.Summary()))
}

// AddItem adds one unit of a product to the cart and opens the cart panel
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var product models.Product
	if err := decodeJSON(w, r, &product); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product data")
		return
	}
	if err := product.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	sess.Cart.AddItem(product)
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart.Summary()))
}

// UpdateItem sets the quantity of a cart line; quantities below one remove it
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := productIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req UpdateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity")
		return
	}

	sess.Cart.SetQuantity(productID, req.Quantity)
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart.Summary()))
}

// RemoveItem deletes a cart line
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	productID, err := productIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	sess.Cart.RemoveItem(productID)
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart.Summary()))
}

// ClearCart empties the cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}
	sess.Cart.Clear()
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart.Summary()))
}

// ToggleCart flips the cart panel visibility
func (h *CartHandler) ToggleCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}
	sess.Cart.Toggle()
	writeJSON(w, http.StatusOK, newCartResponse(sess.Cart.Summary()))
}

func productIDParam(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}

func requireSession(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*session.Session, bool) {
	sess := middleware.GetSessionFromContext(r.Context())
	if sess == nil {
		logger.Error("no session in request context", zap.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, "Session error")
		return nil, false
	}
	return sess, true
}
