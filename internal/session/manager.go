package session

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"bakery-storefront/internal/cart"
	"bakery-storefront/internal/checkout"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	// CookieName is the name of the browser session cookie
	CookieName = "session"

	sessionIDKey = "sid"
)

// Manager maps browser cookies to live sessions. Sessions exist only in
// process memory; a restart starts every visitor with an empty cart.
type Manager struct {
	store    sessions.Store
	orders   checkout.OrderSubmitter
	config   checkout.Config
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a new session manager
func NewManager(store sessions.Store, orders checkout.OrderSubmitter, config checkout.Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}
	return &Manager{
		store:    store,
		orders:   orders,
		config:   config,
		logger:   logger,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for the request, starting a new one and setting
// the cookie when the browser has none or it refers to an unknown session
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) (*Session, error) {
	gs, err := m.store.Get(r, CookieName)
	if err != nil {
		// Tampered or stale cookie, start over
		m.logger.Debug("discarding invalid session cookie", zap.Error(err))
		gs, err = m.store.New(r, CookieName)
		if gs == nil {
			return nil, fmt.Errorf("failed to create session cookie: %w", err)
		}
	}

	id, _ := gs.Values[sessionIDKey].(string)

	m.mu.Lock()
	sess, ok := m.sessions[id]
	if !ok {
		id = uuid.NewString()
		sess = m.newSession(id)
		m.sessions[id] = sess
	}
	m.mu.Unlock()

	sess.touch(m.now())

	if !ok {
		gs.Values[sessionIDKey] = id
		if err := gs.Save(r, w); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		m.logger.Info("session started", zap.String("session_id", id))
	}
	return sess, nil
}

// Lookup returns a live session by id
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Destroy tears a session down, clearing its cart
func (m *Manager) Destroy(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		sess.Logout()
		m.logger.Info("session destroyed",
			zap.String("session_id", id),
			zap.Duration("age", m.now().Sub(sess.CreatedAt())))
	}
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep destroys sessions idle for longer than maxIdle and returns how many were removed
func (m *Manager) Sweep(maxIdle time.Duration) int {
	now := m.now()

	m.mu.Lock()
	var expired []string
	for id, sess := range m.sessions {
		if sess.idleSince(now) > maxIdle && !sess.Checkout.Processing() {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.Destroy(id)
	}
	return len(expired)
}

// StartSweeper runs Sweep every interval until stop is closed
func (m *Manager) StartSweeper(interval, maxIdle time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(maxIdle); n > 0 {
					m.logger.Info("expired idle sessions", zap.Int("count", n))
				}
			case <-stop:
				return
			}
		}
	}()
}

func (m *Manager) newSession(id string) *Session {
	now := m.now()
	logger := m.logger.With(zap.String("session_id", id))
	sess := &Session{
		ID:        id,
		Cart:      cart.NewStore(logger),
		createdAt: now,
		lastSeen:  now,
	}
	sess.Checkout = checkout.NewPipeline(sess.Cart, sess, m.orders, m.config, logger)
	return sess
}
