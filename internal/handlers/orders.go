package handlers

import (
	"net/http"

	"bakery-storefront/internal/models"
	"bakery-storefront/internal/services"

	"go.uber.org/zap"
)

// OrderHandler serves the logged in user's order history
type OrderHandler struct {
	orders services.OrderServiceInterface
	logger *zap.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders services.OrderServiceInterface, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{orders: orders, logger: logger}
}

// OrderView is an order history line with the status flags the order page uses
type OrderView struct {
	*models.Order
	Pending        bool `json:"pending"`
	ReadyForPickup bool `json:"readyForPickup"`
	Cancellable    bool `json:"cancellable"`
}

func newOrderView(order *models.Order) OrderView {
	return OrderView{
		Order:          order,
		Pending:        order.IsPending(),
		ReadyForPickup: order.IsReadyForPickup(),
		Cancellable:    order.CanBeCancelled(),
	}
}

// ListOrders returns the user's orders, newest first
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	user, authenticated := sess.CurrentUser()
	if !authenticated {
		writeCheckoutError(w, h.logger, models.ErrNotAuthenticated)
		return
	}

	orders, err := h.orders.GetUserOrders(r.Context(), user.ID)
	if err != nil {
		writeCheckoutError(w, h.logger, err)
		return
	}
	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		if order != nil {
			views = append(views, newOrderView(order))
		}
	}
	writeJSON(w, http.StatusOK, views)
}
