package services

import (
	"context"
	"sync"
	"time"

	"bakery-storefront/internal/models"

	"go.uber.org/zap"
)

// MockOrderService keeps orders in memory, used when no order service URL is configured
type MockOrderService struct {
	mu     sync.Mutex
	orders []*models.Order
	nextID int
	logger *zap.Logger
}

// NewMockOrderService creates a new in-memory order service
func NewMockOrderService(logger *zap.Logger) *MockOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockOrderService{nextID: 1, logger: logger}
}

// CreateOrder records the order and returns it as pending
func (s *MockOrderService) CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, &models.SubmissionError{StatusCode: 400, Message: "Order items are required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	items := make([]models.OrderItem, len(req.Items))
	copy(items, req.Items)
	order := &models.Order{
		OrderID:       s.nextID,
		UserID:        req.UserID,
		TotalAmount:   req.TotalAmount,
		Status:        models.OrderPending,
		PickupDate:    req.PickupDate,
		PickupTime:    req.PickupTime,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
		CreatedAt:     models.NewTimestamp(now),
		Message:       "Order placed successfully",
	}
	s.nextID++
	s.orders = append(s.orders, order)

	s.logger.Info("mock order service: order stored",
		zap.Int("order_id", order.OrderID),
		zap.Int("user_id", order.UserID))

	return order, nil
}

// GetUserOrders returns the user's orders, newest first
func (s *MockOrderService) GetUserOrders(ctx context.Context, userID int) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var orders []*models.Order
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].UserID == userID {
			orders = append(orders, s.orders[i])
		}
	}
	return orders, nil
}
