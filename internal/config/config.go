package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	Orders   OrderServiceConfig
	Checkout CheckoutConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Env            string
	AllowedOrigins []string
}

type SessionConfig struct {
	Secret  string
	MaxAge  int           // cookie lifetime in seconds
	MaxIdle time.Duration // in-memory cart lifetime without requests
}

type OrderServiceConfig struct {
	BaseURL string
	Timeout time.Duration
	UseMock bool
}

type CheckoutConfig struct {
	PaymentDelay time.Duration
	Timezone     string
	SubmitLimit  int // order submissions allowed per session within SubmitWindow
	SubmitWindow time.Duration
}

type LogConfig struct {
	Level string
}

var defaultAllowedOrigins = []string{"http://localhost:5173", "https://5starsbakery.vercel.app"}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8081"),
			Host:           getEnv("HOST", "localhost"),
			Env:            getEnv("ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins),
		},
		Session: SessionConfig{
			Secret:  getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			MaxAge:  getEnvAsInt("SESSION_MAX_AGE", 86400),
			MaxIdle: getEnvAsDuration("SESSION_MAX_IDLE", 2*time.Hour),
		},
		Orders: OrderServiceConfig{
			BaseURL: getEnv("ORDER_SERVICE_URL", "http://localhost:8080"),
			Timeout: getEnvAsDuration("ORDER_SERVICE_TIMEOUT", 30*time.Second),
			UseMock: getEnvAsBool("ORDER_SERVICE_MOCK", false),
		},
		Checkout: CheckoutConfig{
			PaymentDelay: getEnvAsDuration("PAYMENT_PROCESSING_DELAY", 2*time.Second),
			Timezone:     getEnv("STORE_TIMEZONE", "Local"),
			SubmitLimit:  getEnvAsInt("ORDER_SUBMIT_LIMIT", 5),
			SubmitWindow: getEnvAsDuration("ORDER_SUBMIT_WINDOW", time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks values that would make the server misbehave
func (c *Config) Validate() error {
	if c.IsProduction() && c.Session.Secret == "your-secret-key-change-in-production" {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	if !c.Orders.UseMock && c.Orders.BaseURL == "" {
		return fmt.Errorf("ORDER_SERVICE_URL is required unless ORDER_SERVICE_MOCK is enabled")
	}
	if c.Checkout.PaymentDelay < 0 {
		return fmt.Errorf("PAYMENT_PROCESSING_DELAY cannot be negative")
	}
	if c.Checkout.SubmitLimit < 1 {
		return fmt.Errorf("ORDER_SUBMIT_LIMIT must be at least 1")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// IsProduction returns true when running in production
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Location returns the store timezone used for pickup slots
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Checkout.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_TIMEZONE %q: %w", c.Checkout.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
