package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bakery-storefront/internal/cart"
	"bakery-storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderSubmitter is a mock implementation of OrderSubmitter
type MockOrderSubmitter struct {
	mock.Mock
}

func (m *MockOrderSubmitter) CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.Order, error) {
	args := m.Called(ctx, req)
	if order := args.Get(0); order != nil {
		return order.(*models.Order), args.Error(1)
	}
	return nil, args.Error(1)
}

type staticUser struct {
	user *models.User
}

func (s staticUser) CurrentUser() (*models.User, bool) {
	return s.user, s.user != nil
}

type pipelineFixture struct {
	cart     *cart.Store
	orders   *MockOrderSubmitter
	pipeline *Pipeline
	slept    []time.Duration
}

func newFixture(t *testing.T, user *models.User) *pipelineFixture {
	t.Helper()
	f := &pipelineFixture{
		cart:   cart.NewStore(nil),
		orders: &MockOrderSubmitter{},
	}
	f.pipeline = NewPipeline(f.cart, staticUser{user: user}, f.orders, Config{
		PaymentDelay: 1500 * time.Millisecond,
		Location:     time.UTC,
		Clock:        func() time.Time { return fixedNow },
		Sleep:        func(d time.Duration) { f.slept = append(f.slept, d) },
	}, nil)
	return f
}

func validCard() models.PaymentInput {
	return models.PaymentInput{
		CardNumber:     "4532015112830366",
		Expiry:         "1227",
		CVV:            "123",
		CardholderName: "Jane Baker",
	}
}

func (f *pipelineFixture) readyToOrder(t *testing.T) {
	t.Helper()
	f.cart.AddItem(models.Product{ID: 1, Name: "Sourdough", Price: decimal.RequireFromString("12.50"), Stock: 5})
	f.cart.SetQuantity(1, 2)
	_, err := f.pipeline.SetPickupDate("2026-10-16")
	require.NoError(t, err)
	require.NoError(t, f.pipeline.SetPickupTime("10:00 AM"))
	f.pipeline.SetPaymentInput(validCard())
}

func TestPipeline_SetPickupDate(t *testing.T) {
	f := newFixture(t, nil)

	slots, err := f.pipeline.SetPickupDate("2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, PickupSlots, slots)
	require.NoError(t, f.pipeline.SetPickupTime("11:00 AM"))

	// switching to today drops the morning slot
	slots, err = f.pipeline.SetPickupDate("2026-10-15")
	require.NoError(t, err)
	assert.NotContains(t, slots, "11:00 AM")
	assert.Equal(t, "", f.pipeline.State().Pickup.Time)

	// a still-valid time survives a date change
	require.NoError(t, f.pipeline.SetPickupTime("05:00 PM"))
	_, err = f.pipeline.SetPickupDate("2026-10-20")
	require.NoError(t, err)
	assert.Equal(t, "05:00 PM", f.pipeline.State().Pickup.Time)
}

func TestPipeline_SetPickupDateRejectsBadInput(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.pipeline.SetPickupDate("2026-10-14")
	assert.ErrorIs(t, err, models.ErrPastPickupDate)

	_, err = f.pipeline.SetPickupDate("tomorrow")
	assert.ErrorIs(t, err, models.ErrInvalidPickupDate)
}

func TestPipeline_SlotsForDateLeavesSelection(t *testing.T) {
	f := newFixture(t, nil)

	slots, err := f.pipeline.SlotsForDate("2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, []string{"03:00 PM", "04:00 PM", "05:00 PM", "06:00 PM"}, slots)

	slots, err = f.pipeline.SlotsForDate("2026-10-01")
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = f.pipeline.SlotsForDate("15/10/2026")
	assert.ErrorIs(t, err, models.ErrInvalidPickupDate)

	assert.Empty(t, f.pipeline.State().Pickup.Date)
}

func TestPipeline_SetPickupTime(t *testing.T) {
	f := newFixture(t, nil)

	err := f.pipeline.SetPickupTime("10:00 AM")
	assert.ErrorIs(t, err, models.ErrPickupSlotUnavailable, "no date selected yet")

	_, err = f.pipeline.SetPickupDate("2026-10-15")
	require.NoError(t, err)
	assert.ErrorIs(t, f.pipeline.SetPickupTime("02:00 PM"), models.ErrPickupSlotUnavailable)
	assert.NoError(t, f.pipeline.SetPickupTime("03:00 PM"))
}

func TestPipeline_SetPaymentInputFormats(t *testing.T) {
	f := newFixture(t, nil)

	formatted := f.pipeline.SetPaymentInput(models.PaymentInput{
		CardNumber:     "4532015112830366",
		Expiry:         "425",
		CVV:            "12x34",
		CardholderName: "Jane",
	})
	assert.Equal(t, "4532 0151 1283 0366", formatted.CardNumber)
	assert.Equal(t, "04/25", formatted.Expiry)
	assert.Equal(t, "123", formatted.CVV)
	assert.Equal(t, formatted, f.pipeline.PaymentInput())

	state := f.pipeline.State()
	assert.Equal(t, BrandVisa, state.CardBrand)
	assert.Equal(t, "************0366", state.MaskedCard)

	errs := f.pipeline.ValidateCardDetails()
	assert.Equal(t, []string{FieldExpiry}, errs.Fields())
}

func TestPipeline_SetPaymentMethod(t *testing.T) {
	f := newFixture(t, nil)
	assert.ErrorIs(t, f.pipeline.SetPaymentMethod("bitcoin"), models.ErrInvalidPaymentMethod)
	assert.NoError(t, f.pipeline.SetPaymentMethod(models.PaymentCash))
	assert.Equal(t, models.PaymentCash, f.pipeline.State().PaymentMethod)
}

func TestPipeline_PlaceOrder(t *testing.T) {
	user := &models.User{ID: 7, Username: "jane"}

	t.Run("submits card order and clears cart", func(t *testing.T) {
		f := newFixture(t, user)
		f.readyToOrder(t)

		created := &models.Order{OrderID: 101, Status: models.OrderPending}
		f.orders.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *models.OrderRequest) bool {
			return req.UserID == 7 &&
				req.TotalAmount.Equal(decimal.RequireFromString("25.00")) &&
				len(req.Items) == 1 &&
				req.Items[0].ProductID == 1 &&
				req.Items[0].Quantity == 2 &&
				req.Items[0].Price.Equal(decimal.RequireFromString("12.50")) &&
				req.PickupDate == "2026-10-16" &&
				req.PickupTime == "10:00 AM" &&
				req.PaymentMethod == models.PaymentCard
		})).Return(created, nil).Once()

		order, err := f.pipeline.PlaceOrder(context.Background())
		require.NoError(t, err)
		assert.Equal(t, created, order)
		assert.True(t, f.cart.IsEmpty())
		assert.Equal(t, []time.Duration{1500 * time.Millisecond}, f.slept)
		assert.False(t, f.pipeline.State().Pickup.IsComplete())
		assert.False(t, f.pipeline.Processing())
		f.orders.AssertExpectations(t)
	})

	t.Run("cash order skips card validation and delay", func(t *testing.T) {
		f := newFixture(t, user)
		f.readyToOrder(t)
		f.pipeline.SetPaymentInput(models.PaymentInput{})
		require.NoError(t, f.pipeline.SetPaymentMethod(models.PaymentCash))

		f.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(&models.Order{}, nil).Once()

		_, err := f.pipeline.PlaceOrder(context.Background())
		require.NoError(t, err)
		assert.Empty(t, f.slept)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.pipeline.PlaceOrder(context.Background())
		assert.ErrorIs(t, err, models.ErrEmptyCart)
		f.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("not authenticated", func(t *testing.T) {
		f := newFixture(t, nil)
		f.readyToOrder(t)
		_, err := f.pipeline.PlaceOrder(context.Background())
		assert.ErrorIs(t, err, models.ErrNotAuthenticated)
		assert.Equal(t, 2, f.cart.Count())
	})

	t.Run("incomplete pickup", func(t *testing.T) {
		f := newFixture(t, user)
		f.cart.AddItem(models.Product{ID: 1, Price: decimal.NewFromInt(3), Stock: 1})
		_, err := f.pipeline.SetPickupDate("2026-10-16")
		require.NoError(t, err)

		_, err = f.pipeline.PlaceOrder(context.Background())
		assert.ErrorIs(t, err, models.ErrIncompletePickupSelection)
	})

	t.Run("invalid card reports every field", func(t *testing.T) {
		f := newFixture(t, user)
		f.readyToOrder(t)
		f.pipeline.SetPaymentInput(models.PaymentInput{CardNumber: "4532015112830367", Expiry: "0926", CVV: "1", CardholderName: "Al"})

		_, err := f.pipeline.PlaceOrder(context.Background())
		require.ErrorIs(t, err, models.ErrInvalidPaymentDetails)

		var detailsErr *models.PaymentDetailsError
		require.True(t, errors.As(err, &detailsErr))
		assert.Len(t, detailsErr.Fields, 4)
		assert.Empty(t, f.slept)
		assert.Equal(t, 1, f.cart.Len())
	})

	t.Run("service rejection leaves cart untouched", func(t *testing.T) {
		f := newFixture(t, user)
		f.readyToOrder(t)
		f.orders.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, &models.SubmissionError{StatusCode: 500, Message: "Failed to save order"}).Once()

		_, err := f.pipeline.PlaceOrder(context.Background())
		require.ErrorIs(t, err, models.ErrSubmissionFailed)
		assert.Contains(t, err.Error(), "Failed to save order")
		assert.Equal(t, 2, f.cart.Count())
		assert.True(t, f.pipeline.State().Pickup.IsComplete())
	})

	t.Run("unclassified error becomes network failure", func(t *testing.T) {
		f := newFixture(t, user)
		f.readyToOrder(t)
		f.orders.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, errors.New("connection reset")).Once()

		_, err := f.pipeline.PlaceOrder(context.Background())
		assert.ErrorIs(t, err, models.ErrNetworkFailure)
		assert.Equal(t, 2, f.cart.Count())
	})
}

func TestPipeline_PlaceOrderClearsExpiredSlot(t *testing.T) {
	now := time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC)
	store := cart.NewStore(nil)
	orders := &MockOrderSubmitter{}
	p := NewPipeline(store, staticUser{user: &models.User{ID: 1}}, orders, Config{
		Location: time.UTC,
		Clock:    func() time.Time { return now },
		Sleep:    func(time.Duration) {},
	}, nil)

	store.AddItem(models.Product{ID: 1, Price: decimal.NewFromInt(4), Stock: 3})
	_, err := p.SetPickupDate("2026-10-15")
	require.NoError(t, err)
	require.NoError(t, p.SetPickupTime("10:00 AM"))
	require.NoError(t, p.SetPaymentMethod(models.PaymentCash))

	now = time.Date(2026, time.October, 15, 10, 15, 0, 0, time.UTC)

	_, err = p.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, models.ErrIncompletePickupSelection)
	assert.Equal(t, "", p.State().Pickup.Time)
	orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestPipeline_RejectsConcurrentSubmission(t *testing.T) {
	f := newFixture(t, &models.User{ID: 3})
	f.readyToOrder(t)

	release := make(chan struct{})
	entered := make(chan struct{})
	f.orders.On("CreateOrder", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(&models.Order{OrderID: 1}, nil).Once()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = f.pipeline.PlaceOrder(context.Background())
	}()

	<-entered
	assert.True(t, f.pipeline.Processing())
	_, err := f.pipeline.PlaceOrder(context.Background())
	assert.ErrorIs(t, err, models.ErrCheckoutInProgress)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	f.orders.AssertNumberOfCalls(t, "CreateOrder", 1)
}
