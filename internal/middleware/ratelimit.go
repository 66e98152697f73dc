package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SubmitRateLimiter caps how many order submissions a client can make
// within a sliding window
type SubmitRateLimiter struct {
	attempts    map[string][]time.Time
	mutex       sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// NewSubmitRateLimiter creates a new submission rate limiter
func NewSubmitRateLimiter(maxAttempts int, window time.Duration) *SubmitRateLimiter {
	return &SubmitRateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Allow records an attempt for key and reports whether it is within the limit
func (rl *SubmitRateLimiter) Allow(key string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := rl.recent(key, now)
	if len(valid) >= rl.maxAttempts {
		rl.attempts[key] = valid
		return false
	}

	rl.attempts[key] = append(valid, now)
	return true
}

// RetryAfter returns the time until key may submit again
func (rl *SubmitRateLimiter) RetryAfter(key string) time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := rl.recent(key, now)
	if len(valid) < rl.maxAttempts {
		return 0
	}
	// Oldest attempt in the window frees the next slot
	return valid[0].Add(rl.window).Sub(now)
}

// Cleanup drops keys with no attempts inside the window
func (rl *SubmitRateLimiter) Cleanup() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key := range rl.attempts {
		if valid := rl.recent(key, now); len(valid) == 0 {
			delete(rl.attempts, key)
		} else {
			rl.attempts[key] = valid
		}
	}
}

// StartCleanup runs Cleanup every interval until stop is closed
func (rl *SubmitRateLimiter) StartCleanup(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-stop:
				return
			}
		}
	}()
}

func (rl *SubmitRateLimiter) recent(key string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	var valid []time.Time
	for _, attempt := range rl.attempts[key] {
		if attempt.After(cutoff) {
			valid = append(valid, attempt)
		}
	}
	return valid
}

// SubmitRateLimit limits POST requests per session, falling back to the
// client IP when no session has been loaded
func SubmitRateLimit(limiter *SubmitRateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := getClientIP(r)
			if sess := GetSessionFromContext(r.Context()); sess != nil {
				key = sess.ID
			}

			if !limiter.Allow(key) {
				wait := limiter.RetryAfter(key)
				logger.Warn("order submission rate limited",
					zap.String("key", key),
					zap.Duration("retry_after", wait))
				w.Header().Set("Retry-After", strconv.Itoa(int(wait.Round(time.Second).Seconds())))
				writeJSONError(w, http.StatusTooManyRequests, "Too many order attempts. Please try again later.")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
