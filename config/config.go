package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	GatewayAddr   string

	// WidgetMetricsAddr keeps the two processes off the same port when
	// they share a host.
	WidgetMetricsAddr string

	// Providers
	CoinGeckoURL   string
	DexScreenerURL string
	Currency       string
	CatalogPages   int

	// Behavior
	DefaultPairQuery string
	SearchDebounce   time.Duration
	WidgetRefresh    time.Duration
	FetchTimeout     time.Duration

	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/orders.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		GatewayAddr:   getEnv("GATEWAY_ADDR", ":8080"),

		WidgetMetricsAddr: getEnv("WIDGET_METRICS_ADDR", ":9091"),

		CoinGeckoURL:   getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		DexScreenerURL: getEnv("DEXSCREENER_URL", "https://api.dexscreener.com"),
		Currency:       getEnv("CURRENCY", "usd"),
		CatalogPages:   getEnvInt("CATALOG_PAGES", 1),

		DefaultPairQuery: getEnv("DEFAULT_PAIR_QUERY", "solana"),
		SearchDebounce:   getEnvMillis("SEARCH_DEBOUNCE_MS", 300),
		WidgetRefresh:    getEnvSeconds("WIDGET_REFRESH_SECONDS", 30),
		FetchTimeout:     getEnvSeconds("FETCH_TIMEOUT_SECONDS", 10),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("[config] ignoring invalid %s value: %q", key, v)
		return fallback
	}
	return n
}

func getEnvMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Millisecond
}

func getEnvSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvInt(key, fallback)) * time.Second
}
