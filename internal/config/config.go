package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	IG        IGConfig
	Streaming StreamingConfig
	App       AppConfig
}

type IGConfig struct {
	APIURL     string
	APIKey     string
	Identifier string
	Password   string
	AccountID  string
}

type StreamingConfig struct {
	// PriceAdapter names the backend data adapter serving detailed price
	// subscriptions. IG uses different adapter names per environment, so it
	// is overridable via IG_PRICE_ADAPTER.
	PriceAdapter string
	// TradeEvents controls whether the trade and balance feeds of the
	// account are subscribed by default.
	TradeEvents bool
}

type AppConfig struct {
	LogLevel string
	Epics    []string // Instruments to subscribe to at startup (empty = none)
}

func Load() (*Config, error) {
	cfg := &Config{}

	// IG gateway configuration
	cfg.IG.APIURL = getEnv("IG_API_URL", "https://demo-api.ig.com/gateway/deal")
	cfg.IG.APIKey = getEnv("IG_API_KEY", "")
	cfg.IG.Identifier = getEnv("IG_IDENTIFIER", "")
	cfg.IG.Password = getEnv("IG_PASSWORD", "")
	cfg.IG.AccountID = getEnv("IG_ACCOUNT_ID", "")

	// Streaming configuration
	cfg.Streaming.PriceAdapter = getEnv("IG_PRICE_ADAPTER", "Pricing")
	cfg.Streaming.TradeEvents = getEnvBool("IG_STREAM_TRADES", true)

	// App configuration
	cfg.App.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.App.Epics = getEnvSlice("IG_EPICS", []string{})

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim spaces
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
