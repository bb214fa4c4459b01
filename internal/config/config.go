// Package config resolves all runtime configuration from the environment
// once at process start. Missing provider credentials do not stop the
// process; the affected endpoints answer ServiceUnavailable instead of
// discovering the gap mid-request.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr     string
	DatabasePath string
	FlowLogPath  string

	RedisAddr    string // empty disables caching
	KafkaBrokers string // empty disables the review queue
	ReviewTopic  string

	CORSOrigins []string

	Currency string

	Payment PaymentConfig
	Packeta PacketaConfig
}

type PaymentConfig struct {
	BaseURL   string
	SecretKey string
}

// Configured reports whether the payment provider can be called at all.
func (p PaymentConfig) Configured() bool {
	return p.BaseURL != "" && p.SecretKey != ""
}

type PacketaConfig struct {
	APIURL      string
	APIPassword string
	FeedURL     string
	Eshop       string
	// WeightKG is the declared parcel weight. A flat constant: parcel
	// weight is not derived from order contents.
	WeightKG float64
}

func (p PacketaConfig) Configured() bool {
	return p.APIURL != "" && p.APIPassword != ""
}

// Load reads the environment. It returns an error only for values that are
// malformed, not for absent optional providers.
func Load() (*Config, error) {
	weight := 1.0
	if raw := os.Getenv("PACKETA_WEIGHT_KG"); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w <= 0 {
			return nil, fmt.Errorf("config: PACKETA_WEIGHT_KG %q is not a positive number", raw)
		}
		weight = w
	}

	cfg := &Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DatabasePath: getEnv("DATABASE_PATH", "./data/storefront.db"),
		FlowLogPath:  getEnv("FLOW_LOG_PATH", "./data/flowlog.db"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		ReviewTopic:  getEnv("REVIEW_TOPIC", "storefront.reconciliation-review"),
		CORSOrigins:  []string{getEnv("CORS_ORIGIN", "*")},
		Currency:     getEnv("CURRENCY", "USD"),
		Payment: PaymentConfig{
			BaseURL:   os.Getenv("PAYMENT_API_URL"),
			SecretKey: os.Getenv("PAYMENT_SECRET_KEY"),
		},
		Packeta: PacketaConfig{
			APIURL:      os.Getenv("PACKETA_API_URL"),
			APIPassword: os.Getenv("PACKETA_API_PASSWORD"),
			FeedURL:     os.Getenv("PACKETA_FEED_URL"),
			Eshop:       getEnv("PACKETA_ESHOP", "storefront"),
			WeightKG:    weight,
		},
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
