package middleware

import (
	"context"
	"net/http"

	"bakery-storefront/internal/session"

	"go.uber.org/zap"
)

// SessionLoader resolves the visitor's session for a request
type SessionLoader interface {
	Get(w http.ResponseWriter, r *http.Request) (*session.Session, error)
}

// SessionMiddleware loads the visitor's cart session into the request context
func SessionMiddleware(loader SessionLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := loader.Get(w, r)
			if err != nil {
				logger.Error("failed to load session",
					zap.Error(err),
					zap.String("request_id", GetRequestID(r.Context())))
				writeJSONError(w, http.StatusInternalServerError, "Failed to load session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// GetSessionFromContext returns the session loaded by SessionMiddleware
func GetSessionFromContext(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(SessionContextKey).(*session.Session); ok {
		return sess
	}
	return nil
}

// WithSession returns a copy of ctx carrying sess
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, sess)
}
