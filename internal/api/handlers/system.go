package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/request"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/response"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/service"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService *service.SystemService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService) *SystemHandler {
	return &SystemHandler{
		systemService: systemService,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Error    string `json:"error,omitempty"`
}

// Health checks the health of the system and database connectivity
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.systemService.CheckHealth(r.Context()); err != nil {
		response.RespondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:   "unhealthy",
			Database: "disconnected",
			Error:    err.Error(),
		})
		return
	}

	response.RespondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: "connected",
	})
}

// VersionInfoResponse represents the version check response containing the
// application and schema versions, the active scoring profile and feature availability.
type VersionInfoResponse struct {
	AppVersion  string          `json:"app_version"`
	DbVersion   string          `json:"db_version"`
	ProfileName string          `json:"profile_name"`
	Benchmark   string          `json:"benchmark"`
	Features    map[string]bool `json:"features"`
}

// Version handles GET requests to retrieve version information and feature availability.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfoResponse
// Error: 500 Internal Server Error if version check fails
func (h *SystemHandler) Version(w http.ResponseWriter, r *http.Request) {
	info, err := h.systemService.GetVersionInfo(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToGetVersionInfo.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, VersionInfoResponse{
		AppVersion:  info.AppVersion,
		DbVersion:   info.DbVersion,
		ProfileName: info.ProfileName,
		Benchmark:   info.Benchmark,
		Features:    info.Features,
	})
}

// CacheStatsResponse reports the size of the market data cache.
type CacheStatsResponse struct {
	Entries int `json:"entries"`
	Expired int `json:"expired"`
}

// CacheStats handles GET requests for market data cache statistics.
//
// Endpoint: GET /api/system/cache
// Response: 200 OK with CacheStatsResponse
// Error: 500 Internal Server Error if the cache cannot be read
func (h *SystemHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.systemService.GetCacheStats(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to read cache statistics", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, CacheStatsResponse{
		Entries: stats.Entries,
		Expired: stats.Expired,
	})
}

// CacheInvalidationResponse reports how many cache entries were dropped for a symbol.
type CacheInvalidationResponse struct {
	Symbol  string `json:"symbol"`
	Removed int64  `json:"removed"`
}

// InvalidateCache handles DELETE requests that drop a symbol's cached market data.
//
// Endpoint: DELETE /api/system/cache/{symbol}
// Response: 200 OK with CacheInvalidationResponse
// Error: 500 Internal Server Error if the cache cannot be written
func (h *SystemHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	symbol := request.NormalizeTicker(chi.URLParam(r, "symbol"))

	removed, err := h.systemService.InvalidateSymbol(r.Context(), symbol)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to invalidate cache", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, CacheInvalidationResponse{
		Symbol:  symbol,
		Removed: removed,
	})
}
