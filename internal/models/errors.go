package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Checkout errors surfaced to callers of the checkout pipeline
var (
	ErrEmptyCart                 = errors.New("cart is empty")
	ErrNotAuthenticated          = errors.New("user is not authenticated")
	ErrIncompletePickupSelection = errors.New("pickup date and time are required")
	ErrInvalidPaymentDetails     = errors.New("invalid payment details")
	ErrSubmissionFailed          = errors.New("order submission failed")
	ErrNetworkFailure            = errors.New("order service unreachable")
	ErrCheckoutInProgress        = errors.New("checkout already in progress")
)

// Pickup and input errors
var (
	ErrInvalidPickupDate     = errors.New("invalid pickup date")
	ErrPastPickupDate        = errors.New("pickup date is in the past")
	ErrPickupSlotUnavailable = errors.New("pickup slot is not available")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidInput          = errors.New("invalid input")
)

// FieldErrors maps a payment field name to a human readable problem
type FieldErrors map[string]string

// HasErrors reports whether any field failed validation
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// Fields returns the failing field names in a stable order
func (fe FieldErrors) Fields() []string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// PaymentDetailsError carries every field-level problem found in one validation pass
type PaymentDetailsError struct {
	Fields FieldErrors
}

func (e *PaymentDetailsError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return fmt.Sprintf("%s (%s)", ErrInvalidPaymentDetails.Error(), strings.Join(parts, "; "))
}

func (e *PaymentDetailsError) Is(target error) bool {
	return target == ErrInvalidPaymentDetails
}

// SubmissionError is returned when the order service rejects an order
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("order service error (%d): %s", e.StatusCode, e.Message)
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// NetworkError wraps a transport failure talking to the order service
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", ErrNetworkFailure.Error(), e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == ErrNetworkFailure
}
