package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/request"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/response"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/risk"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/service"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/validation"
)

// Scores are displayed with one decimal, weights and contributions with more.
const (
	scorePlaces  = 1
	weightPlaces = 4
)

// RiskHandler handles HTTP requests for risk scoring endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// scoring to the riskService.
type RiskHandler struct {
	riskService *service.RiskService
}

// NewRiskHandler creates a new RiskHandler with the provided service dependency.
func NewRiskHandler(riskService *service.RiskService) *RiskHandler {
	return &RiskHandler{
		riskService: riskService,
	}
}

// TickerScoreResponse is the display form of one ticker's evaluation.
// Label is taken from the rounded Score, so the two always agree.
type TickerScoreResponse struct {
	Ticker      string             `json:"ticker"`
	Score       float64            `json:"score"`
	Label       risk.Label         `json:"label"`
	SubScores   map[string]float64 `json:"subScores"`
	Breakdown   map[string]float64 `json:"breakdown"`
	Partial     bool               `json:"partialFundamentals"`
	Substituted []string           `json:"substituted"`
	Boosters    []string           `json:"boosters"`
	Distressed  bool               `json:"distressed"`
	Inputs      risk.Inputs        `json:"inputs"`
}

// TickerRiskResponse is returned by the single ticker endpoint.
type TickerRiskResponse struct {
	AnalysisID         string              `json:"analysisId"`
	Period             string              `json:"period"`
	Benchmark          string              `json:"benchmark"`
	BenchmarkAvailable bool                `json:"benchmarkAvailable"`
	AnalyzedAt         time.Time           `json:"analyzedAt"`
	Result             TickerScoreResponse `json:"result"`
}

// PortfolioTickerResponse is one portfolio row in request order.
type PortfolioTickerResponse struct {
	Ticker string               `json:"ticker"`
	Amount decimal.Decimal      `json:"amount"`
	Status risk.OutcomeStatus   `json:"status"`
	Result *TickerScoreResponse `json:"result,omitempty"`
	Reason string               `json:"reason,omitempty"`
}

// ContributionResponse is one ticker's share of the portfolio score.
type ContributionResponse struct {
	Ticker       string          `json:"ticker"`
	Score        float64         `json:"score"`
	Amount       decimal.Decimal `json:"amount"`
	Weight       float64         `json:"weight"`
	Contribution float64         `json:"contribution"`
}

// AggregateResponse is the amount-weighted portfolio score. Label is taken from the rounded Score.
type AggregateResponse struct {
	Score         float64                `json:"score"`
	Label         risk.Label             `json:"label"`
	TotalAmount   decimal.Decimal        `json:"totalAmount"`
	Contributions []ContributionResponse `json:"contributions"`
}

// PortfolioRiskResponse is returned by the portfolio endpoint.
// Aggregate is null and Message is set when no entry could be scored.
type PortfolioRiskResponse struct {
	AnalysisID         string                    `json:"analysisId"`
	Period             string                    `json:"period"`
	Benchmark          string                    `json:"benchmark"`
	BenchmarkAvailable bool                      `json:"benchmarkAvailable"`
	AnalyzedAt         time.Time                 `json:"analyzedAt"`
	Tickers            []PortfolioTickerResponse `json:"tickers"`
	Aggregate          *AggregateResponse        `json:"aggregate"`
	Unscored           []string                  `json:"unscored"`
	Excluded           []string                  `json:"excluded"`
	Message            string                    `json:"message,omitempty"`
}

// LabelRangeResponse is the score range of one label.
type LabelRangeResponse struct {
	Label risk.Label `json:"label"`
	Min   *float64   `json:"min"`
	Max   *float64   `json:"max"`
}

// ProfileResponse describes the active scoring profile.
type ProfileResponse struct {
	Benchmark string               `json:"benchmark"`
	Profile   risk.Profile         `json:"profile"`
	Labels    []LabelRangeResponse `json:"labels"`
}

// TickerRisk handles GET requests to score a single ticker.
//
// Endpoint: GET /api/risk/ticker/{symbol}?period=1y
// Response: 200 OK with TickerRiskResponse
// Error: 400 Bad Request if the period is invalid
// Error: 404 Not Found if no price history is available
// Error: 500 Internal Server Error if scoring fails
func (h *RiskHandler) TickerRisk(w http.ResponseWriter, r *http.Request) {
	symbol := request.NormalizeTicker(chi.URLParam(r, "symbol"))

	period, err := request.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidPeriod.Error(), err.Error())
		return
	}

	analysis, err := h.riskService.ScoreTicker(r.Context(), symbol, period)
	if err != nil {
		if errors.Is(err, apperrors.ErrNoDataAvailable) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrNoDataAvailable.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToScoreTicker.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, TickerRiskResponse{
		AnalysisID:         analysis.ID,
		Period:             string(analysis.Period),
		Benchmark:          analysis.Benchmark,
		BenchmarkAvailable: analysis.BenchmarkAvailable,
		AnalyzedAt:         analysis.AnalyzedAt,
		Result:             newTickerScoreResponse(analysis.Result, h.thresholds()),
	})
}

// PortfolioRisk handles POST requests to score a caller-owned portfolio.
//
// Endpoint: POST /api/risk/portfolio
// Request Body: PortfolioRiskRequest
// Response: 200 OK with PortfolioRiskResponse
// Error: 400 Bad Request if the body is malformed or fails validation
// Error: 500 Internal Server Error if the analysis fails
func (h *RiskHandler) PortfolioRisk(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.PortfolioRiskRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePortfolioRisk(req); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			response.RespondError(w, http.StatusBadRequest, "validation failed", verr.Fields)
			return
		}
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	period, err := request.ParsePeriod(req.Period)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrInvalidPeriod.Error(), err.Error())
		return
	}

	analysis, err := h.riskService.AnalyzePortfolio(r.Context(), req.ToEntries(), period)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAnalyzePortfolio.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, newPortfolioRiskResponse(analysis, h.thresholds()))
}

// Profile handles GET requests for the active scoring profile.
//
// Endpoint: GET /api/risk/profile
// Response: 200 OK with ProfileResponse
func (h *RiskHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile := h.riskService.Profile()

	response.RespondJSON(w, http.StatusOK, ProfileResponse{
		Benchmark: h.riskService.Benchmark(),
		Profile:   profile,
		Labels:    labelRanges(profile.Thresholds),
	})
}

func (h *RiskHandler) thresholds() []float64 {
	return h.riskService.Profile().Thresholds
}

func newTickerScoreResponse(result risk.Result, thresholds []float64) TickerScoreResponse {
	score := round(result.Score, scorePlaces)
	return TickerScoreResponse{
		Ticker:      result.Ticker,
		Score:       score,
		Label:       risk.LabelFor(score, thresholds),
		SubScores:   roundMap(result.SubScores, scorePlaces),
		Breakdown:   roundMap(result.Breakdown, 2),
		Partial:     result.Partial(),
		Substituted: nonNil(result.Substituted),
		Boosters:    nonNil(result.Boosters),
		Distressed:  result.Distressed,
		Inputs:      result.Inputs,
	}
}

func newPortfolioRiskResponse(analysis service.PortfolioAnalysis, thresholds []float64) PortfolioRiskResponse {
	resp := PortfolioRiskResponse{
		AnalysisID:         analysis.ID,
		Period:             string(analysis.Period),
		Benchmark:          analysis.Benchmark,
		BenchmarkAvailable: analysis.BenchmarkAvailable,
		AnalyzedAt:         analysis.AnalyzedAt,
		Tickers:            make([]PortfolioTickerResponse, 0, len(analysis.Outcomes)),
		Unscored:           nonNil(analysis.Unscored),
		Excluded:           nonNil(analysis.Excluded),
		Message:            analysis.Message,
	}

	for _, outcome := range analysis.Outcomes {
		row := PortfolioTickerResponse{
			Ticker: outcome.Ticker,
			Amount: outcome.Amount,
			Status: outcome.Status,
			Reason: outcome.Reason,
		}
		if outcome.Result != nil {
			score := newTickerScoreResponse(*outcome.Result, thresholds)
			row.Result = &score
		}
		resp.Tickers = append(resp.Tickers, row)
	}

	if agg := analysis.Aggregate; agg != nil {
		contributions := make([]ContributionResponse, 0, len(agg.Contributions))
		for _, c := range agg.Contributions {
			contributions = append(contributions, ContributionResponse{
				Ticker:       c.Ticker,
				Score:        round(c.Score, scorePlaces),
				Amount:       c.Amount,
				Weight:       round(c.Weight, weightPlaces),
				Contribution: round(c.Contribution, 2),
			})
		}
		score := round(agg.Score, scorePlaces)
		resp.Aggregate = &AggregateResponse{
			Score:         score,
			Label:         risk.LabelFor(score, thresholds),
			TotalAmount:   agg.TotalAmount,
			Contributions: contributions,
		}
	}

	return resp
}

// labelRanges pairs each label with its score range. The first label has no
// lower bound and the last no upper bound.
func labelRanges(thresholds []float64) []LabelRangeResponse {
	ranges := make([]LabelRangeResponse, len(risk.Labels))
	for i, label := range risk.Labels {
		ranges[i].Label = label
		if i > 0 && i-1 < len(thresholds) {
			lower := thresholds[i-1]
			ranges[i].Min = &lower
		}
		if i < len(thresholds) {
			upper := thresholds[i]
			ranges[i].Max = &upper
		}
	}
	return ranges
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
