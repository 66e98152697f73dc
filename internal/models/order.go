package models

import "github.com/shopspring/decimal"

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderPending        OrderStatus = "PENDING"
	OrderPreparing      OrderStatus = "PREPARING"
	OrderReadyForPickup OrderStatus = "READY_FOR_PICKUP"
	OrderCompleted      OrderStatus = "COMPLETED"
	OrderCancelled      OrderStatus = "CANCELLED"
)

// PaymentMethod represents how the customer pays for the order
type PaymentMethod string

const (
	PaymentCard          PaymentMethod = "card"
	PaymentCash          PaymentMethod = "cash"
	PaymentOnlineBanking PaymentMethod = "online_banking"
)

// Validate validates the payment method
func (m PaymentMethod) Validate() error {
	switch m {
	case PaymentCard, PaymentCash, PaymentOnlineBanking:
		return nil
	default:
		return ErrInvalidPaymentMethod
	}
}

// OrderItem is one line of an order submission
type OrderItem struct {
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// OrderRequest is the finalized payload sent to the order service
type OrderRequest struct {
	UserID        int             `json:"userId"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Items         []OrderItem     `json:"items"`
	PickupDate    string          `json:"pickupDate"`
	PickupTime    string          `json:"pickupTime"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}

// Order is the order representation returned by the order service
type Order struct {
	OrderID       int             `json:"orderId,omitempty"`
	UserID        int             `json:"userId,omitempty"`
	Username      string          `json:"username,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	Status        OrderStatus     `json:"status,omitempty"`
	PickupDate    string          `json:"pickupDate,omitempty"`
	PickupTime    string          `json:"pickupTime,omitempty"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	Items         []OrderItem     `json:"items,omitempty"`
	CreatedAt     *Timestamp      `json:"createdAt,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderPending
}

// IsReadyForPickup returns true if the bakery has finished the order
func (o *Order) IsReadyForPickup() bool {
	return o.Status == OrderReadyForPickup
}

// CanBeCancelled returns true if the order can still be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status == OrderPending || o.Status == OrderPreparing
}
