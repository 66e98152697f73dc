package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"bakery-storefront/internal/checkout"
	"bakery-storefront/internal/middleware"
	"bakery-storefront/internal/models"
	"bakery-storefront/internal/services"
	"bakery-storefront/internal/session"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)

type apiClient struct {
	t       *testing.T
	server  *httptest.Server
	client  *http.Client
	manager *session.Manager
}

func newAPIClient(t *testing.T, limiter *middleware.SubmitRateLimiter) *apiClient {
	t.Helper()
	return newAPIClientWithOrders(t, services.NewMockOrderService(nil), limiter)
}

func newAPIClientWithOrders(t *testing.T, orders services.OrderServiceInterface, limiter *middleware.SubmitRateLimiter) *apiClient {
	t.Helper()

	store := sessions.NewCookieStore([]byte("0123456789abcdef0123456789abcdef"))
	manager := session.NewManager(store, orders, checkout.Config{
		Location: time.UTC,
		Clock:    func() time.Time { return testNow },
		Sleep:    func(time.Duration) {},
	}, nil)

	srv := httptest.NewServer(NewRouter(Dependencies{
		Sessions:       manager,
		Orders:         orders,
		SubmitLimiter:  limiter,
		AllowedOrigins: []string{"http://localhost:5173"},
	}))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &apiClient{
		t:       t,
		server:  srv,
		client:  &http.Client{Jar: jar},
		manager: manager,
	}
}

func (c *apiClient) do(method, path string, body interface{}, out interface{}) int {
	c.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, c.server.URL+path, &payload)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func sourdough() map[string]interface{} {
	return map[string]interface{}{"id": 1, "name": "Sourdough", "price": "12.50", "stock": 3}
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	c := newAPIClient(t, nil)

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health", nil, nil))

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/api/nope", nil, &body))
	assert.Equal(t, "Not Found", body["message"])
}

func TestRouter_CartLifecycle(t *testing.T) {
	c := newAPIClient(t, nil)

	var summary models.CartSummary
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/cart/items", sourdough(), &summary))
	assert.True(t, summary.Open)
	assert.Equal(t, 1, summary.Count)

	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/cart/items/1", map[string]int{"quantity": 10}, &summary))
	assert.Equal(t, 3, summary.Count, "clamped to stock")
	assert.Equal(t, "37.5", summary.Total.String())

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/cart/toggle", nil, &summary))
	assert.False(t, summary.Open)

	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/api/cart/items/1", nil, &summary))
	assert.Empty(t, summary.Items)

	var errBody errorBody
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPut, "/api/cart/items/abc", map[string]int{"quantity": 1}, &errBody))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/cart/items", map[string]interface{}{"id": 0}, &errBody))

	assert.Equal(t, 1, c.manager.Count(), "cookie keeps the same session")
}

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func TestRouter_CheckoutFlow(t *testing.T) {
	c := newAPIClient(t, nil)

	var errBody errorBody
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/checkout/orders", nil, &errBody))
	assert.Equal(t, "Your cart is empty", errBody.Message)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/cart/items", sourdough(), nil))
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/checkout/orders", nil, &errBody))

	user := models.User{ID: 7, Username: "jane"}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/session/user", user, nil))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/checkout/orders", nil, &errBody))
	assert.Equal(t, "Please select a pickup date and time", errBody.Message)

	var slots struct {
		Slots []string `json:"slots"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/checkout/slots?date=2026-10-15", nil, &slots))
	assert.Equal(t, checkout.PickupSlots[0], slots.Slots[0], "09:00 leaves every slot open")
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/checkout/slots?date=nope", nil, &errBody))

	assert.Equal(t, http.StatusBadRequest,
		c.do(http.MethodPut, "/api/checkout/pickup", map[string]string{"date": "2026-10-14"}, &errBody))
	require.Equal(t, http.StatusOK,
		c.do(http.MethodPut, "/api/checkout/pickup", map[string]string{"date": "2026-10-16", "time": "11:00 AM"}, nil))

	var payment struct {
		Input  models.PaymentInput `json:"input"`
		Errors map[string]string   `json:"errors"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/checkout/payment", map[string]string{
		"method":     "card",
		"cardNumber": "4532015112830367",
		"expiry":     "1227",
	}, &payment))
	assert.Equal(t, "4532 0151 1283 0367", payment.Input.CardNumber)
	assert.Equal(t, "12/27", payment.Input.Expiry)
	assert.Contains(t, payment.Errors, checkout.FieldCardNumber)
	assert.Contains(t, payment.Errors, checkout.FieldCVV)

	assert.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/api/checkout/orders", nil, &errBody))
	assert.Contains(t, errBody.Fields, checkout.FieldCardNumber)

	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/checkout/payment", map[string]string{
		"method":         "card",
		"cardNumber":     "4532015112830366",
		"expiry":         "12/27",
		"cvv":            "123",
		"cardholderName": "Jane Baker",
	}, &payment))
	assert.Empty(t, payment.Errors)

	var placed struct {
		Order   models.Order `json:"order"`
		Message string       `json:"message"`
	}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/checkout/orders", nil, &placed))
	assert.Equal(t, 7, placed.Order.UserID)
	assert.Equal(t, "12.5", placed.Order.TotalAmount.String())
	assert.Equal(t, "2026-10-16", placed.Order.PickupDate)
	assert.Equal(t, "11:00 AM", placed.Order.PickupTime)

	var summary models.CartSummary
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/cart", nil, &summary))
	assert.Empty(t, summary.Items)

	var history []models.Order
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/orders", nil, &history))
	require.Len(t, history, 1)
	assert.Equal(t, placed.Order.OrderID, history[0].OrderID)
}

func TestRouter_LogoutClearsCart(t *testing.T) {
	c := newAPIClient(t, nil)

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/session/user", models.User{ID: 1, Email: "a@b.co"}, nil))
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/cart/items", sourdough(), nil))

	var who struct {
		Authenticated bool `json:"authenticated"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodDelete, "/api/session/user", nil, &who))
	assert.False(t, who.Authenticated)

	var summary models.CartSummary
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/cart", nil, &summary))
	assert.Empty(t, summary.Items)

	var errBody errorBody
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/orders", nil, &errBody))
}

func TestRouter_SubmitRateLimit(t *testing.T) {
	c := newAPIClient(t, middleware.NewSubmitRateLimiter(1, time.Minute))

	var errBody errorBody
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/api/checkout/orders", nil, &errBody))
	assert.Equal(t, http.StatusTooManyRequests, c.do(http.MethodPost, "/api/checkout/orders", nil, &errBody))
}

// Payloads as the catalog and the auth service send them
const (
	catalogProductJSON = `{"id":4,"name":"Croissant","description":"Buttery and flaky","ingredients":"Flour, butter, yeast","price":3.5,"stock":1,"category":"Pastry","imageUrl":"/uploads/croissant.png"}`
	loginUserJSON      = `{"id":12,"username":"jdoe","firstName":"John","lastName":"Doe","email":"jdoe@example.com","password":"hunter2","phoneNumber":"0771234567","gender":"Male","birthdate":"Jan 5, 1990","role":"ADMIN"}`
)

func TestRouter_AcceptsCatalogAndLoginShapes(t *testing.T) {
	c := newAPIClient(t, nil)

	var cart struct {
		Items []struct {
			ProductID    int    `json:"productId"`
			Subtotal     string `json:"subtotal"`
			AtStockLimit bool   `json:"atStockLimit"`
		} `json:"items"`
		Count int `json:"count"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/cart/items", json.RawMessage(catalogProductJSON), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].ProductID)
	assert.Equal(t, "3.5", cart.Items[0].Subtotal)
	assert.True(t, cart.Items[0].AtStockLimit, "single unit in stock")

	var who map[string]interface{}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/session/user", json.RawMessage(loginUserJSON), &who))
	assert.Equal(t, true, who["authenticated"])
	assert.Equal(t, "John Doe", who["displayName"])
	assert.Equal(t, true, who["admin"])
	user := who["user"].(map[string]interface{})
	assert.EqualValues(t, 12, user["id"])
	assert.NotContains(t, user, "password")
}

func TestRouter_PaymentUpdatesKeepOmittedFields(t *testing.T) {
	c := newAPIClient(t, nil)

	var payment struct {
		Input  models.PaymentInput `json:"input"`
		Errors map[string]string   `json:"errors"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/checkout/payment", map[string]string{
		"cardNumber":     "4532015112830366",
		"expiry":         "1227",
		"cvv":            "123",
		"cardholderName": "Jane Baker",
	}, &payment))
	assert.Empty(t, payment.Errors)

	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/checkout/payment", map[string]string{"method": "cash"}, &payment))
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/checkout/payment", map[string]string{"method": "card"}, &payment))
	assert.Equal(t, "4532 0151 1283 0366", payment.Input.CardNumber)
	assert.Equal(t, "Jane Baker", payment.Input.CardholderName)
	assert.Empty(t, payment.Errors)

	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/api/checkout/payment", map[string]string{"cvv": ""}, &payment))
	assert.Equal(t, "4532 0151 1283 0366", payment.Input.CardNumber)
	assert.Contains(t, payment.Errors, checkout.FieldCVV)
}

func TestRouter_OrderHistoryFromJavaOrderService(t *testing.T) {
	orderService := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12", r.URL.Query().Get("userId"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"orderId":3,"userId":12,"totalAmount":25.50,"status":"READY_FOR_PICKUP","pickupDate":"2026-10-16","pickupTime":"10:00 AM","createdAt":"Oct 15, 2026, 2:05:11 PM","shippingAddress":null,"items":[{"productId":4,"quantity":2,"price":3.5}],"username":"jdoe","paymentMethod":"cash"}]`))
	}))
	t.Cleanup(orderService.Close)

	c := newAPIClientWithOrders(t, services.NewOrderClient(services.OrderClientConfig{BaseURL: orderService.URL}, nil), nil)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/session/user", json.RawMessage(loginUserJSON), nil))

	var history []struct {
		OrderID        int    `json:"orderId"`
		CreatedAt      string `json:"createdAt"`
		Pending        bool   `json:"pending"`
		ReadyForPickup bool   `json:"readyForPickup"`
		Cancellable    bool   `json:"cancellable"`
	}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/orders", nil, &history))
	require.Len(t, history, 1)
	assert.Equal(t, 3, history[0].OrderID)
	assert.Equal(t, "2026-10-15T14:05:11Z", history[0].CreatedAt)
	assert.True(t, history[0].ReadyForPickup)
	assert.False(t, history[0].Pending)
	assert.False(t, history[0].Cancellable)
}
