package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/middleware"
)

func requestWithSymbol(symbol string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("symbol", symbol)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestValidateTickerMiddleware(t *testing.T) {
	t.Run("passes through valid ticker", func(t *testing.T) {
		handlerCalled := false
		next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})

		w := httptest.NewRecorder()
		middleware.ValidateTickerMiddleware(next).ServeHTTP(w, requestWithSymbol("BRK.B"))

		if !handlerCalled {
			t.Error("Expected next handler to be called")
		}
		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
	})

	for name, symbol := range map[string]string{
		"returns 400 for malformed ticker": "NOT A TICKER",
		"returns 400 for missing ticker":   "",
	} {
		t.Run(name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
				handlerCalled = true
			})

			w := httptest.NewRecorder()
			middleware.ValidateTickerMiddleware(next).ServeHTTP(w, requestWithSymbol(symbol))

			if handlerCalled {
				t.Error("Expected next handler NOT to be called")
			}
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected 400, got %d", w.Code)
			}
		})
	}
}
