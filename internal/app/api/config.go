package api

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.temporal.io/sdk/client"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port              string
	PostgresDSN       string
	RedisAddr         string
	AMQPURL           string
	FCMServerKey      string
	FCMEndpoint       string
	PriceTolerance    decimal.Decimal
	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool
}

// LoadConfig reads .env (if present) and environment variables, applies
// defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		AMQPURL:           strings.TrimSpace(os.Getenv("AMQP_URL")),
		FCMServerKey:      strings.TrimSpace(os.Getenv("FCM_SERVER_KEY")),
		FCMEndpoint:       strings.TrimSpace(os.Getenv("FCM_ENDPOINT")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
	}
	if raw := strings.TrimSpace(os.Getenv("PRICE_TOLERANCE_PERCENT")); raw != "" {
		tolerance, err := decimal.NewFromString(raw)
		if err != nil || tolerance.IsNegative() {
			return Config{}, fmt.Errorf("PRICE_TOLERANCE_PERCENT must be a non-negative decimal")
		}
		cfg.PriceTolerance = tolerance
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
