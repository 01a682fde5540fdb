package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		if cfg.Server.Addr != "localhost:5002" {
			t.Errorf("Expected addr localhost:5002, got %s", cfg.Server.Addr)
		}
		if cfg.Market.BenchmarkSymbol != "^GSPC" {
			t.Errorf("Expected benchmark ^GSPC, got %s", cfg.Market.BenchmarkSymbol)
		}
		if cfg.Market.CacheTTL != 6*time.Hour {
			t.Errorf("Expected cache TTL 6h, got %v", cfg.Market.CacheTTL)
		}
		if cfg.Market.YahooRateLimit != 4 {
			t.Errorf("Expected rate limit 4, got %d", cfg.Market.YahooRateLimit)
		}
		if cfg.Log.Format != "json" {
			t.Errorf("Expected json log format, got %s", cfg.Log.Format)
		}
		if !cfg.Scheduler.Enabled {
			t.Error("Expected scheduler enabled by default")
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("SERVER_HOST", "0.0.0.0")
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("BENCHMARK_SYMBOL", "spy")
		t.Setenv("CACHE_TTL", "30m")
		t.Setenv("YAHOO_RATE_LIMIT", "2")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
		t.Setenv("RISK_PROFILE_PATH", "/etc/risk/profile.yaml")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		if cfg.Server.Addr != "0.0.0.0:8080" {
			t.Errorf("Expected addr 0.0.0.0:8080, got %s", cfg.Server.Addr)
		}
		if cfg.Market.BenchmarkSymbol != "SPY" {
			t.Errorf("Expected benchmark SPY, got %s", cfg.Market.BenchmarkSymbol)
		}
		if cfg.Market.CacheTTL != 30*time.Minute {
			t.Errorf("Expected cache TTL 30m, got %v", cfg.Market.CacheTTL)
		}
		if cfg.Market.YahooRateLimit != 2 {
			t.Errorf("Expected rate limit 2, got %d", cfg.Market.YahooRateLimit)
		}
		if cfg.Log.Level != "debug" {
			t.Errorf("Expected level debug, got %s", cfg.Log.Level)
		}
		want := []string{"https://a.example", "https://b.example"}
		if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, want) {
			t.Errorf("Expected origins %v, got %v", want, cfg.CORS.AllowedOrigins)
		}
		if cfg.Risk.ProfilePath != "/etc/risk/profile.yaml" {
			t.Errorf("Expected profile path, got %s", cfg.Risk.ProfilePath)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		cases := map[string]string{
			"CACHE_TTL":         "six hours",
			"YAHOO_RATE_LIMIT":  "fast",
			"SCHEDULER_ENABLED": "maybe",
		}
		for key, value := range cases {
			t.Run(key, func(t *testing.T) {
				t.Setenv(key, value)
				if _, err := Load(); err == nil {
					t.Errorf("Expected error for %s=%s", key, value)
				}
			})
		}
	})

	t.Run("rejects non-positive rate limit", func(t *testing.T) {
		t.Setenv("YAHOO_RATE_LIMIT", "0")
		if _, err := Load(); err == nil {
			t.Error("Expected error for zero rate limit")
		}
	})
}
