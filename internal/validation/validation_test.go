package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Investment-Risk-Analyzer/internal/api/request"
	"github.com/ndewijer/Investment-Risk-Analyzer/internal/apperrors"
)

func entry(ticker, amount string) request.PortfolioEntryRequest {
	return request.PortfolioEntryRequest{Ticker: ticker, Amount: decimal.RequireFromString(amount)}
}

func TestValidatePortfolioRisk(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		req := request.PortfolioRiskRequest{
			Period: "6mo",
			Entries: []request.PortfolioEntryRequest{
				entry("AAPL", "100"),
				entry("BRK.B", "50.25"),
				entry("^GSPC", "0"),
				entry("CL=F", "10"),
			},
		}

		if err := ValidatePortfolioRisk(req); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	tests := []struct {
		name      string
		req       request.PortfolioRiskRequest
		wantField string
	}{
		{
			name:      "no entries",
			req:       request.PortfolioRiskRequest{},
			wantField: "entries",
		},
		{
			name: "empty ticker",
			req: request.PortfolioRiskRequest{
				Entries: []request.PortfolioEntryRequest{entry("", "10")},
			},
			wantField: "entries[0].ticker",
		},
		{
			name: "malformed ticker",
			req: request.PortfolioRiskRequest{
				Entries: []request.PortfolioEntryRequest{entry("AAPL", "1"), entry("DROP TABLE", "10")},
			},
			wantField: "entries[1].ticker",
		},
		{
			name: "negative amount",
			req: request.PortfolioRiskRequest{
				Entries: []request.PortfolioEntryRequest{entry("AAPL", "-5")},
			},
			wantField: "entries[0].amount",
		},
		{
			name: "unknown period",
			req: request.PortfolioRiskRequest{
				Period:  "10y",
				Entries: []request.PortfolioEntryRequest{entry("AAPL", "5")},
			},
			wantField: "period",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePortfolioRisk(tt.req)

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("Expected error for field %q, got %v", tt.wantField, verr.Fields)
			}
		})
	}

	t.Run("too many entries", func(t *testing.T) {
		req := request.PortfolioRiskRequest{}
		for i := 0; i < 101; i++ {
			req.Entries = append(req.Entries, entry("AAPL", "1"))
		}

		var verr *Error
		if !errors.As(ValidatePortfolioRisk(req), &verr) {
			t.Fatal("Expected *Error for 101 entries")
		}
		if _, ok := verr.Fields["entries"]; !ok {
			t.Errorf("Expected entries error, got %v", verr.Fields)
		}
	})
}

func TestValidateTicker(t *testing.T) {
	valid := []string{"AAPL", "brk.b", "^GSPC", "EURUSD=X", "RDS-A", " MSFT "}
	for _, symbol := range valid {
		if err := ValidateTicker(symbol); err != nil {
			t.Errorf("Expected %q to be valid, got %v", symbol, err)
		}
	}

	invalid := []string{"", "A B", "AAPL/MSFT", "THIS-TICKER-IS-TOO-LONG", "<script>"}
	for _, symbol := range invalid {
		if err := ValidateTicker(symbol); !errors.Is(err, apperrors.ErrInvalidTicker) {
			t.Errorf("Expected ErrInvalidTicker for %q, got %v", symbol, err)
		}
	}
}
