package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/middleware"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := chimiddleware.RequestID(middleware.Logger(logger)(next))

	req := httptest.NewRequest(http.MethodGet, "/api/risk/ticker/GONE", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected one JSON log line, got %q", buf.String())
	}

	if entry["method"] != http.MethodGet {
		t.Errorf("Expected method GET, got %v", entry["method"])
	}
	if entry["path"] != "/api/risk/ticker/GONE" {
		t.Errorf("Expected path logged, got %v", entry["path"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("Expected status 404, got %v", entry["status"])
	}
	if id, _ := entry["request_id"].(string); id == "" {
		t.Error("Expected request_id to be logged")
	}
}
