package session

import (
	"sync"
	"time"

	"bakery-storefront/internal/cart"
	"bakery-storefront/internal/checkout"
	"bakery-storefront/internal/models"
)

// Session is the explicit per-visitor context owning the cart, the checkout
// pipeline and the authenticated identity. It replaces ambient global state.
type Session struct {
	ID       string
	Cart     *cart.Store
	Checkout *checkout.Pipeline

	mu        sync.RWMutex
	user      *models.User
	createdAt time.Time
	lastSeen  time.Time
}

// CurrentUser returns the logged in user, if any
func (s *Session) CurrentUser() (*models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, false
	}
	user := *s.user
	return &user, true
}

// Login attaches an identity issued by the auth service
func (s *Session) Login(user *models.User) error {
	if user == nil {
		return models.ErrInvalidInput
	}
	if err := user.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := *user
	s.user = &u
	return nil
}

// Logout drops the identity and clears the cart and checkout form
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.Cart.Clear()
	s.Cart.Close()
	s.Checkout.Reset()
}

// CreatedAt returns when the session started
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return now.Sub(s.lastSeen)
}
