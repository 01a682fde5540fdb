// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/response"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/validation"
)

// ValidateTickerMiddleware validates that the symbol URL parameter is present and looks like a ticker.
// Returns 400 Bad Request if the symbol is missing or malformed.
//
// Example usage in router:
//
//	r.Route("/ticker/{symbol}", func(r chi.Router) {
//	    r.Use(middleware.ValidateTickerMiddleware)
//	    r.Get("/", handler.TickerRisk)
//	})
func ValidateTickerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := chi.URLParam(r, "symbol")

		if symbol == "" {
			response.RespondError(w, http.StatusBadRequest, "ticker symbol is required", "")
			return
		}

		if err := validation.ValidateTicker(symbol); err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid ticker symbol", err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}
