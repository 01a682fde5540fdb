package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Log       LogConfig
	Market    MarketConfig
	Risk      RiskConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // zerolog level name
	Format string // "json" or "console"
}

// MarketConfig holds market data provider configuration
type MarketConfig struct {
	BenchmarkSymbol string
	CacheTTL        time.Duration
	YahooRateLimit  int // requests per second
	YahooTimeout    time.Duration
}

// RiskConfig holds scoring configuration
type RiskConfig struct {
	ProfilePath string // optional YAML scoring profile
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	Enabled       bool
	PruneSchedule string
	WarmSchedule  string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	cacheTTL, err := getEnvDuration("CACHE_TTL", 6*time.Hour)
	if err != nil {
		return nil, err
	}
	yahooTimeout, err := getEnvDuration("YAHOO_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getEnvInt("YAHOO_RATE_LIMIT", 4)
	if err != nil {
		return nil, err
	}
	if rateLimit <= 0 {
		return nil, fmt.Errorf("YAHOO_RATE_LIMIT must be positive, got %d", rateLimit)
	}
	schedulerEnabled, err := getEnvBool("SCHEDULER_ENABLED", true)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5002"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/risk_analyzer.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost",
			}),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Market: MarketConfig{
			BenchmarkSymbol: strings.ToUpper(getEnv("BENCHMARK_SYMBOL", "^GSPC")),
			CacheTTL:        cacheTTL,
			YahooRateLimit:  rateLimit,
			YahooTimeout:    yahooTimeout,
		},
		Risk: RiskConfig{
			ProfilePath: getEnv("RISK_PROFILE_PATH", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:       schedulerEnabled,
			PruneSchedule: getEnv("CACHE_PRUNE_SCHEDULE", "@every 1h"),
			WarmSchedule:  getEnv("BENCHMARK_WARM_SCHEDULE", "30 22 * * 1-5"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string, defaultValue []string) []string {
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
	if len(items) == 0 {
		return defaultValue
	}
	return items
}
