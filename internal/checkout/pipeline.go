package checkout

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"bakery-storefront/internal/models"

	"go.uber.org/zap"
)

// DefaultPaymentDelay simulates the payment gateway round trip for card orders
const DefaultPaymentDelay = 2 * time.Second

// Cart is the part of the cart store the pipeline reads and clears
type Cart interface {
	Summary() models.CartSummary
	Clear()
}

// UserProvider exposes the currently authenticated identity, if any
type UserProvider interface {
	CurrentUser() (*models.User, bool)
}

// OrderSubmitter sends a finalized order to the order service
type OrderSubmitter interface {
	CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.Order, error)
}

// Config holds pipeline tunables. Zero values fall back to defaults.
type Config struct {
	PaymentDelay time.Duration
	Location     *time.Location
	Clock        func() time.Time
	Sleep        func(time.Duration)
}

// State is a read-only snapshot of the checkout form
type State struct {
	Pickup         models.PickupSelection `json:"pickup"`
	AvailableSlots []string               `json:"availableSlots"`
	PaymentMethod  models.PaymentMethod   `json:"paymentMethod"`
	MaskedCard     string                 `json:"maskedCard,omitempty"`
	Expiry         string                 `json:"expiry,omitempty"`
	CardholderName string                 `json:"cardholderName,omitempty"`
	CardBrand      CardBrand              `json:"cardBrand"`
	Processing     bool                   `json:"processing"`
}

// Pipeline turns a cart, a pickup selection and payment input into a submitted order
type Pipeline struct {
	cart   Cart
	users  UserProvider
	orders OrderSubmitter
	logger *zap.Logger

	paymentDelay time.Duration
	loc          *time.Location
	clock        func() time.Time
	sleep        func(time.Duration)

	mu         sync.Mutex
	pickup     models.PickupSelection
	slots      []string
	method     models.PaymentMethod
	payment    models.PaymentInput
	processing bool
}

// NewPipeline creates a checkout pipeline for one session
func NewPipeline(cart Cart, users UserProvider, orders OrderSubmitter, cfg Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		cart:         cart,
		users:        users,
		orders:       orders,
		logger:       logger,
		paymentDelay: cfg.PaymentDelay,
		loc:          cfg.Location,
		clock:        cfg.Clock,
		sleep:        cfg.Sleep,
		method:       models.PaymentCard,
		slots:        []string{},
	}
	if p.paymentDelay < 0 {
		p.paymentDelay = 0
	}
	if p.loc == nil {
		p.loc = time.Local
	}
	if p.clock == nil {
		p.clock = time.Now
	}
	if p.sleep == nil {
		p.sleep = time.Sleep
	}
	return p
}

func (p *Pipeline) now() time.Time {
	return p.clock().In(p.loc)
}

// SetPickupDate selects a pickup date and recomputes the available slots.
// A chosen time that is no longer available is cleared. Past dates are rejected.
func (p *Pipeline) SetPickupDate(date string) ([]string, error) {
	d, err := ParsePickupDate(date, p.loc)
	if err != nil {
		return nil, err
	}
	now := p.now()
	if IsPastDate(d, now) {
		return nil, fmt.Errorf("%w: %s", models.ErrPastPickupDate, date)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.pickup.Date = date
	p.slots = AvailableSlots(d, now)
	if p.pickup.Time != "" && !slices.Contains(p.slots, p.pickup.Time) {
		p.logger.Debug("cleared pickup time no longer available",
			zap.String("date", date), zap.String("time", p.pickup.Time))
		p.pickup.Time = ""
	}
	return slices.Clone(p.slots), nil
}

// SlotsForDate returns the slots bookable on date without changing the selection
func (p *Pipeline) SlotsForDate(date string) ([]string, error) {
	d, err := ParsePickupDate(date, p.loc)
	if err != nil {
		return nil, err
	}
	return AvailableSlots(d, p.now()), nil
}

// SetPickupTime selects one of the currently available slots
func (p *Pipeline) SetPickupTime(label string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pickup.Date == "" || !slices.Contains(p.slots, label) {
		return fmt.Errorf("%w: %q", models.ErrPickupSlotUnavailable, label)
	}
	p.pickup.Time = label
	return nil
}

// AvailableSlots returns the slots computed for the selected date
func (p *Pipeline) AvailableSlots() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.slots)
}

// SetPaymentMethod selects how the order is paid
func (p *Pipeline) SetPaymentMethod(method models.PaymentMethod) error {
	if err := method.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.method = method
	return nil
}

// PaymentInput returns the stored, formatted card fields
func (p *Pipeline) PaymentInput() models.PaymentInput {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.payment
}

// SetPaymentInput stores the card fields after keystroke normalization and
// returns the formatted values
func (p *Pipeline) SetPaymentInput(input models.PaymentInput) models.PaymentInput {
	formatted := FormatPaymentInput(input)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payment = formatted
	return formatted
}

// ValidateCardDetails runs a validation pass over the stored card fields
func (p *Pipeline) ValidateCardDetails() models.FieldErrors {
	p.mu.Lock()
	payment := p.payment
	p.mu.Unlock()
	return ValidateCardDetails(payment, p.now())
}

// State returns a snapshot of the checkout form
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return State{
		Pickup:         p.pickup,
		AvailableSlots: slices.Clone(p.slots),
		PaymentMethod:  p.method,
		MaskedCard:     MaskCardNumber(p.payment.CardNumber),
		Expiry:         p.payment.Expiry,
		CardholderName: p.payment.CardholderName,
		CardBrand:      DetectCardBrand(p.payment.CardNumber),
		Processing:     p.processing,
	}
}

// Processing reports whether an order submission is in flight
func (p *Pipeline) Processing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processing
}

// Reset clears pickup and payment state
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
}

func (p *Pipeline) reset() {
	p.pickup = models.PickupSelection{}
	p.slots = []string{}
	p.method = models.PaymentCard
	p.payment = models.PaymentInput{}
}

// PlaceOrder validates the checkout and submits the order. The gates run in
// order: empty cart, authentication, pickup selection, card details. Card
// orders wait for the simulated payment delay before submission. On success
// the cart and checkout form are cleared; on failure the cart is untouched.
func (p *Pipeline) PlaceOrder(ctx context.Context) (*models.Order, error) {
	p.mu.Lock()
	if p.processing {
		p.mu.Unlock()
		return nil, models.ErrCheckoutInProgress
	}
	p.processing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.processing = false
		p.mu.Unlock()
	}()

	summary := p.cart.Summary()
	if len(summary.Items) == 0 {
		return nil, models.ErrEmptyCart
	}

	user, ok := p.users.CurrentUser()
	if !ok || user == nil {
		return nil, models.ErrNotAuthenticated
	}

	pickup, method, payment, err := p.checkoutInput()
	if err != nil {
		return nil, err
	}

	if method == models.PaymentCard {
		if fieldErrs := ValidateCardDetails(payment, p.now()); fieldErrs.HasErrors() {
			return nil, &models.PaymentDetailsError{Fields: fieldErrs}
		}
		p.logger.Debug("processing card payment", zap.Duration("delay", p.paymentDelay))
		p.sleep(p.paymentDelay)
	}

	req := buildOrderRequest(user, summary, pickup, method)
	order, err := p.orders.CreateOrder(ctx, req)
	if err != nil {
		p.logger.Warn("order submission failed",
			zap.Int("user_id", user.ID),
			zap.String("total", req.TotalAmount.StringFixed(2)),
			zap.Error(err))
		var subErr *models.SubmissionError
		var netErr *models.NetworkError
		if errors.As(err, &subErr) || errors.As(err, &netErr) {
			return nil, err
		}
		return nil, &models.NetworkError{Err: err}
	}

	p.cart.Clear()
	p.Reset()

	p.logger.Info("order placed",
		zap.Int("user_id", user.ID),
		zap.Int("items", len(req.Items)),
		zap.String("total", req.TotalAmount.StringFixed(2)),
		zap.String("pickup_date", req.PickupDate),
		zap.String("pickup_time", req.PickupTime),
		zap.String("payment_method", string(req.PaymentMethod)))

	return order, nil
}

// checkoutInput snapshots the form and re-checks the pickup slot against the
// current time, clearing a slot that has passed since it was chosen
func (p *Pipeline) checkoutInput() (models.PickupSelection, models.PaymentMethod, models.PaymentInput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.pickup.IsComplete() {
		return models.PickupSelection{}, "", models.PaymentInput{}, models.ErrIncompletePickupSelection
	}

	d, err := ParsePickupDate(p.pickup.Date, p.loc)
	if err != nil {
		return models.PickupSelection{}, "", models.PaymentInput{}, models.ErrIncompletePickupSelection
	}
	p.slots = AvailableSlots(d, p.now())
	if !slices.Contains(p.slots, p.pickup.Time) {
		p.pickup.Time = ""
		return models.PickupSelection{}, "", models.PaymentInput{}, models.ErrIncompletePickupSelection
	}

	return p.pickup, p.method, p.payment, nil
}

func buildOrderRequest(user *models.User, summary models.CartSummary, pickup models.PickupSelection, method models.PaymentMethod) *models.OrderRequest {
	items := make([]models.OrderItem, 0, len(summary.Items))
	for _, entry := range summary.Items {
		items = append(items, models.OrderItem{
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
			Price:     entry.UnitPrice,
		})
	}
	return &models.OrderRequest{
		UserID:        user.ID,
		TotalAmount:   summary.Total,
		Items:         items,
		PickupDate:    pickup.Date,
		PickupTime:    pickup.Time,
		PaymentMethod: method,
	}
}
