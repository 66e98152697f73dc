package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bakery-storefront/internal/checkout"
	"bakery-storefront/internal/config"
	"bakery-storefront/internal/logging"
	"bakery-storefront/internal/middleware"
	"bakery-storefront/internal/server"
	"bakery-storefront/internal/services"
	"bakery-storefront/internal/session"
	"bakery-storefront/internal/utils"

	"github.com/gorilla/sessions"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger, err := logging.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Create session store
	hashKey, blockKey, err := utils.DeriveCookieKeys(cfg.Session.Secret)
	if err != nil {
		return err
	}
	sessionStore := sessions.NewCookieStore(hashKey, blockKey)
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	var orders services.OrderServiceInterface
	if cfg.Orders.UseMock {
		logger.Warn("using in-memory order service")
		orders = services.NewMockOrderService(logger.Named("orders"))
	} else {
		orders = services.NewOrderClient(services.OrderClientConfig{
			BaseURL: cfg.Orders.BaseURL,
			Timeout: cfg.Orders.Timeout,
		}, logger.Named("orders"))
	}

	manager := session.NewManager(sessionStore, orders, checkout.Config{
		PaymentDelay: cfg.Checkout.PaymentDelay,
		Location:     loc,
	}, logger.Named("session"))

	limiter := middleware.NewSubmitRateLimiter(cfg.Checkout.SubmitLimit, cfg.Checkout.SubmitWindow)

	stop := make(chan struct{})
	defer close(stop)
	manager.StartSweeper(time.Minute, cfg.Session.MaxIdle, stop)
	limiter.StartCleanup(time.Minute, stop)

	router := server.NewRouter(server.Dependencies{
		Sessions:       manager,
		Orders:         orders,
		SubmitLimiter:  limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	serverAddr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              serverAddr,
		Handler:           otelhttp.NewHandler(router, "bakery-storefront"),
		ReadHeaderTimeout: 10 * time.Second,
		// Card orders hold the request open for the payment delay plus the order call
		WriteTimeout: cfg.Checkout.PaymentDelay + cfg.Orders.Timeout + 10*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", serverAddr),
			zap.String("env", cfg.Server.Env),
			zap.Bool("mock_orders", cfg.Orders.UseMock))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
