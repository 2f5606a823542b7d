package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	LogLevel string

	// Upstream reservation application.
	BaseURL string
	Locale  string

	// Catalog discovery.
	PageSize       int
	PageDelay      time.Duration
	RefreshCatalog bool

	// Availability fetching.
	Concurrency    int
	RequestTimeout time.Duration
	MinFetchDelay  time.Duration
	MaxFetchDelay  time.Duration
	WindowDays     int

	// Session acquisition.
	SessionTimeout time.Duration
	SessionSettle  time.Duration

	// Persistence. StoreBackend is one of "file", "redis", "postgres".
	StoreBackend string
	DataDir      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// Optional prometheus listener, disabled when empty.
	MetricsAddr string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		BaseURL:          getEnv("BASE_URL", "https://anc.ca.apm.activecommunities.com/activemississauga"),
		Locale:           getEnv("LOCALE", "en-US"),
		PageSize:         getEnvAsInt("LISTING_PAGE_SIZE", 100),
		PageDelay:        getEnvAsDuration("LISTING_PAGE_DELAY_MS", 300) * time.Millisecond,
		RefreshCatalog:   getEnvAsBool("REFRESH_CATALOG", true),
		Concurrency:      getEnvAsInt("FETCH_CONCURRENCY", 4),
		RequestTimeout:   getEnvAsDuration("REQUEST_TIMEOUT_SECONDS", 10) * time.Second,
		MinFetchDelay:    getEnvAsDuration("MIN_FETCH_DELAY_MS", 100) * time.Millisecond,
		MaxFetchDelay:    getEnvAsDuration("MAX_FETCH_DELAY_MS", 2500) * time.Millisecond,
		WindowDays:       getEnvAsInt("WINDOW_DAYS", 14),
		SessionTimeout:   getEnvAsDuration("SESSION_TIMEOUT_SECONDS", 60) * time.Second,
		SessionSettle:    getEnvAsDuration("SESSION_SETTLE_SECONDS", 3) * time.Second,
		StoreBackend:     getEnv("STORE_BACKEND", "file"),
		DataDir:          getEnv("DATA_DIR", "data"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresDB:       getEnv("POSTGRES_DB", "facilities"),
		MetricsAddr:      getEnv("METRICS_ADDR", ""),
	}
}

// LandingURL is the public search page whose visit yields session cookies.
func (c *Config) LandingURL() string {
	return c.BaseURL + "/reservation/landing/search"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback))
}
