package handlers

import (
	"net/http"

	"bakery-storefront/internal/checkout"
	"bakery-storefront/internal/models"

	"go.uber.org/zap"
)

// CheckoutHandler drives the session's checkout pipeline
type CheckoutHandler struct {
	logger *zap.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{logger: logger}
}

// PickupRequest selects a pickup date and, optionally, a time slot
type PickupRequest struct {
	Date string `json:"date"`
	Time string `json:"time,omitempty"`
}

// PaymentRequest sets the payment method and raw card fields. Omitted fields
// keep their stored value; an empty string clears one.
type PaymentRequest struct {
	Method         models.PaymentMethod `json:"method"`
	CardNumber     *string              `json:"cardNumber"`
	Expiry         *string              `json:"expiry"`
	CVV            *string              `json:"cvv"`
	CardholderName *string              `json:"cardholderName"`
}

func (req PaymentRequest) hasCardFields() bool {
	return req.CardNumber != nil || req.Expiry != nil || req.CVV != nil || req.CardholderName != nil
}

// mergeInto overlays the fields present in the request on current
func (req PaymentRequest) mergeInto(current models.PaymentInput) models.PaymentInput {
	if req.CardNumber != nil {
		current.CardNumber = *req.CardNumber
	}
	if req.Expiry != nil {
		current.Expiry = *req.Expiry
	}
	if req.CVV != nil {
		current.CVV = *req.CVV
	}
	if req.CardholderName != nil {
		current.CardholderName = *req.CardholderName
	}
	return current
}

// PaymentResponse echoes the formatted card fields with live validation results
type PaymentResponse struct {
	State  checkout.State      `json:"state"`
	Input  models.PaymentInput `json:"input"`
	Errors models.FieldErrors  `json:"errors,omitempty"`
}

// SlotsResponse lists bookable pickup times for a date
type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// OrderResponse is returned after a successful order placement
type OrderResponse struct {
	Order   *models.Order `json:"order"`
	Message string        `json:"message"`
}

// GetState returns the checkout form state
func (h *CheckoutHandler) GetState(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Checkout.State())
}

// GetSlots returns the pickup slots available on the date query parameter
func (h *CheckoutHandler) GetSlots(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	date := r.URL.Query().Get("date")
	slots, err := sess.Checkout.SlotsForDate(date)
	if err != nil {
		writeCheckoutError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, SlotsResponse{Date: date, Slots: slots})
}

// SetPickup selects the pickup date and time
func (h *CheckoutHandler) SetPickup(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var req PickupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid pickup data")
		return
	}

	if _, err := sess.Checkout.SetPickupDate(req.Date); err != nil {
		writeCheckoutError(w, h.logger, err)
		return
	}
	if req.Time != "" {
		if err := sess.Checkout.SetPickupTime(req.Time); err != nil {
			writeCheckoutError(w, h.logger, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, sess.Checkout.State())
}

// SetPayment stores the payment method and any card fields sent. Card errors
// are reported alongside the state so the form can show them while typing.
func (h *CheckoutHandler) SetPayment(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	var req PaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid payment data")
		return
	}

	if req.Method != "" {
		if err := sess.Checkout.SetPaymentMethod(req.Method); err != nil {
			writeCheckoutError(w, h.logger, err)
			return
		}
	}

	formatted := sess.Checkout.PaymentInput()
	if req.hasCardFields() {
		formatted = sess.Checkout.SetPaymentInput(req.mergeInto(formatted))
	}
	resp := PaymentResponse{
		State: sess.Checkout.State(),
		Input: formatted,
	}
	if resp.State.PaymentMethod == models.PaymentCard {
		if errs := sess.Checkout.ValidateCardDetails(); errs.HasErrors() {
			resp.Errors = errs
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PlaceOrder submits the session's cart as an order
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.logger)
	if !ok {
		return
	}

	order, err := sess.Checkout.PlaceOrder(r.Context())
	if err != nil {
		writeCheckoutError(w, h.logger, err)
		return
	}

	message := order.Message
	if message == "" {
		message = "Order placed successfully"
	}
	writeJSON(w, http.StatusCreated, OrderResponse{Order: order, Message: message})
}
