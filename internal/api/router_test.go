package api_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/config"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/metrics"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/testutil"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	metrics.Register()

	db := testutil.SetupTestDB(t)
	provider := testutil.NewMockProviderWithBenchmark(60).
		WithSeries(testutil.NewSeries("AAPL", testutil.OscillatingCloses(100, 0.02, 60))).
		WithSnapshot(testutil.NewFundamentals("AAPL").Build())

	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}

	return api.NewRouter(
		testutil.NewTestSystemService(t, db),
		testutil.NewTestRiskService(t, provider),
		zerolog.Nop(),
		cfg,
	)
}

// TestNewRouter tests that every route is mounted with its middleware.
//
// WHY: Handler tests call handlers directly; only the router shows that the
// ticker route runs symbol validation and that /metrics is exposed.
func TestNewRouter(t *testing.T) {
	router := setupRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/api/system/health", "", http.StatusOK},
		{"version", http.MethodGet, "/api/system/version", "", http.StatusOK},
		{"cache stats", http.MethodGet, "/api/system/cache", "", http.StatusOK},
		{"cache invalidation", http.MethodDelete, "/api/system/cache/AAPL", "", http.StatusOK},
		{"cache invalidation with invalid symbol", http.MethodDelete, "/api/system/cache/$$$", "", http.StatusBadRequest},
		{"ticker", http.MethodGet, "/api/risk/ticker/AAPL", "", http.StatusOK},
		{"ticker without data", http.MethodGet, "/api/risk/ticker/GONE", "", http.StatusNotFound},
		{"invalid ticker symbol", http.MethodGet, "/api/risk/ticker/$$$", "", http.StatusBadRequest},
		{"portfolio", http.MethodPost, "/api/risk/portfolio", `{"entries":[{"ticker":"AAPL","amount":10}]}`, http.StatusOK},
		{"portfolio with GET", http.MethodGet, "/api/risk/portfolio", "", http.StatusMethodNotAllowed},
		{"profile", http.MethodGet, "/api/risk/profile", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestNewRouter_CORS(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/risk/portfolio", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Expected allowed origin http://localhost:3000, got %q", got)
	}
}
