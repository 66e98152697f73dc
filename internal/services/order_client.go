package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bakery-storefront/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// OrderClientConfig represents order service client configuration
type OrderClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// OrderClient talks to the bakery order REST service. Failed calls are not retried.
type OrderClient struct {
	config  OrderClientConfig
	client  *http.Client
	baseURL string
	logger  *zap.Logger
}

// NewOrderClient creates a new order service client
func NewOrderClient(config OrderClientConfig, logger *zap.Logger) *OrderClient {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OrderClient{
		config: config,
		client: &http.Client{
			Timeout:   config.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		logger:  logger,
	}
}

// apiMessage is the error body shape returned by the order service
type apiMessage struct {
	Message string `json:"message"`
}

// CreateOrder submits an order
func (c *OrderClient) CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.Order, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	bodyBytes, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	order := &models.Order{}
	if len(bytes.TrimSpace(bodyBytes)) > 0 {
		if err := json.Unmarshal(bodyBytes, order); err != nil {
			return nil, fmt.Errorf("failed to decode order response: %w", err)
		}
	}
	fillFromRequest(order, req)

	c.logger.Info("order created",
		zap.Int("order_id", order.OrderID),
		zap.Int("user_id", req.UserID),
		zap.String("total", req.TotalAmount.StringFixed(2)))

	return order, nil
}

// GetUserOrders returns the order history of a user
func (c *OrderClient) GetUserOrders(ctx context.Context, userID int) ([]*models.Order, error) {
	query := url.Values{}
	query.Set("userId", strconv.Itoa(userID))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/orders?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order history request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	bodyBytes, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var orders []*models.Order
	if err := json.Unmarshal(bodyBytes, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode order history: %w", err)
	}
	return orders, nil
}

// do sends the request and returns the body of a 2xx response. Transport
// failures become NetworkError, non-2xx responses become SubmissionError.
func (c *OrderClient) do(httpReq *http.Request) ([]byte, error) {
	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Warn("order service request failed",
			zap.String("method", httpReq.Method),
			zap.String("url", httpReq.URL.String()),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, &models.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.NetworkError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("order service response",
		zap.String("method", httpReq.Method),
		zap.String("path", httpReq.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleAPIError(resp.StatusCode, bodyBytes)
	}
	return bodyBytes, nil
}

// handleAPIError extracts the service message from an error response
func (c *OrderClient) handleAPIError(statusCode int, body []byte) error {
	var msg apiMessage
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message == "" {
		msg.Message = "Unknown error"
	}
	return &models.SubmissionError{StatusCode: statusCode, Message: msg.Message}
}

// fillFromRequest completes a sparse service response with the submitted data
func fillFromRequest(order *models.Order, req *models.OrderRequest) {
	if order.UserID == 0 {
		order.UserID = req.UserID
	}
	if order.TotalAmount.IsZero() {
		order.TotalAmount = req.TotalAmount
	}
	if len(order.Items) == 0 {
		order.Items = req.Items
	}
	if order.PickupDate == "" {
		order.PickupDate = req.PickupDate
	}
	if order.PickupTime == "" {
		order.PickupTime = req.PickupTime
	}
	if order.PaymentMethod == "" {
		order.PaymentMethod = req.PaymentMethod
	}
	if order.Status == "" {
		order.Status = models.OrderPending
	}
}
