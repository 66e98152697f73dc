package server

import (
	"net/http"

	"bakery-storefront/internal/handlers"
	"bakery-storefront/internal/middleware"
	"bakery-storefront/internal/services"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the API router is built from
type Dependencies struct {
	Sessions       middleware.SessionLoader
	Orders         services.OrderServiceInterface
	SubmitLimiter  *middleware.SubmitRateLimiter
	AllowedOrigins []string
	Logger         *zap.Logger
}

// NewRouter wires the storefront API routes
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cartHandler := handlers.NewCartHandler(logger)
	checkoutHandler := handlers.NewCheckoutHandler(logger)
	sessionHandler := handlers.NewSessionHandler(logger)
	orderHandler := handlers.NewOrderHandler(deps.Orders, logger)

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(middleware.RecoverMiddleware(logger))
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig(deps.AllowedOrigins)))
	r.Use(middleware.SecurityHeadersMiddleware)

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","service":"bakery-storefront"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(deps.Sessions, logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/toggle", cartHandler.ToggleCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{id}", cartHandler.UpdateItem)
			r.Delete("/items/{id}", cartHandler.RemoveItem)
		})

		r.Route("/session/user", func(r chi.Router) {
			r.Get("/", sessionHandler.GetUser)
			r.Post("/", sessionHandler.Login)
			r.Delete("/", sessionHandler.Logout)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.GetState)
			r.Get("/slots", checkoutHandler.GetSlots)
			r.Put("/pickup", checkoutHandler.SetPickup)
			r.Put("/payment", checkoutHandler.SetPayment)

			r.Group(func(r chi.Router) {
				if deps.SubmitLimiter != nil {
					r.Use(middleware.SubmitRateLimit(deps.SubmitLimiter, logger))
				}
				r.Post("/orders", checkoutHandler.PlaceOrder)
			})
		})

		r.Get("/orders", orderHandler.ListOrders)
	})

	return r
}
