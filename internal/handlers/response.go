package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"bakery-storefront/internal/models"

	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// decodeJSON reads a bounded JSON request body into v. Unknown fields are
// ignored: products and identities arrive in the catalog and auth service
// shapes, which carry more than the cart keeps.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeCheckoutError maps checkout and order service errors to HTTP responses
func writeCheckoutError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var paymentErr *models.PaymentDetailsError
	var submissionErr *models.SubmissionError

	switch {
	case errors.As(err, &paymentErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Please fix the payment details",
			Fields:  paymentErr.Fields,
		})
	case errors.Is(err, models.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "Your cart is empty")
	case errors.Is(err, models.ErrNotAuthenticated):
		writeError(w, http.StatusUnauthorized, "Please log in to place an order")
	case errors.Is(err, models.ErrIncompletePickupSelection):
		writeError(w, http.StatusBadRequest, "Please select a pickup date and time")
	case errors.Is(err, models.ErrInvalidPickupDate),
		errors.Is(err, models.ErrPastPickupDate),
		errors.Is(err, models.ErrPickupSlotUnavailable),
		errors.Is(err, models.ErrInvalidPaymentMethod),
		errors.Is(err, models.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrCheckoutInProgress):
		writeError(w, http.StatusConflict, "Your order is already being processed")
	case errors.As(err, &submissionErr):
		writeError(w, http.StatusBadGateway, submissionErr.Message)
	case errors.Is(err, models.ErrNetworkFailure):
		logger.Warn("order service unreachable", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "Network error. Please try again.")
	default:
		logger.Error("unexpected checkout error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
