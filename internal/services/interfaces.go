package services

import (
	"context"

	"bakery-storefront/internal/models"
)

// OrderServiceInterface defines the interface for the remote order service
type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID int) ([]*models.Order, error)
}
