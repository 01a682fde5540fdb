package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
// Price arrays hold nil for days Yahoo has no quote for.
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart payload.
type Chart struct {
	Result []Result  `json:"result"`
	Error  *APIError `json:"error"`
}

// Result holds one symbol's chart data.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta is the symbol metadata returned with a chart.
type Meta struct {
	Currency           string   `json:"currency"`
	Symbol             string   `json:"symbol"`
	ExchangeName       string   `json:"exchangeName"`
	FullExchangeName   string   `json:"fullExchangeName"`
	LongName           string   `json:"longName"`
	Shortname          string   `json:"shortName"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
}

// IndicatorsContainer wraps the quote arrays.
type IndicatorsContainer struct {
	Quote []Quote `json:"quote"`
}

// Quote holds the OHLCV arrays, index-aligned with Result.Timestamp.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// APIError is the error object Yahoo embeds in chart and quoteSummary payloads.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return e.Code + ": " + e.Description
}

// PriceChart represents a parsed and structured price chart.
type PriceChart struct {
	Symbol     string       `json:"symbol"`
	Indicators []Indicators `json:"indicators"`
}

// Indicators represents a single day's close and volume for a symbol.
type Indicators struct {
	Date       time.Time
	PriceClose float64
	Volume     int64
}

// QuoteSummaryResponse is the raw quoteSummary payload.
type QuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []QuoteSummary `json:"result"`
		Error  *APIError      `json:"error"`
	} `json:"quoteSummary"`
}

// QuoteSummary holds the modules requested from quoteSummary. A module Yahoo does
// not have for a symbol is left nil.
type QuoteSummary struct {
	SummaryDetail        *SummaryDetail        `json:"summaryDetail"`
	FinancialData        *FinancialData        `json:"financialData"`
	DefaultKeyStatistics *DefaultKeyStatistics `json:"defaultKeyStatistics"`
	AssetProfile         *AssetProfile         `json:"assetProfile"`
	ESGScores            *ESGScores            `json:"esgScores"`
}

// Value is Yahoo's formatted number: {"raw": 1.5, "fmt": "1.50"}. Missing values
// arrive as {} and leave Raw nil.
type Value struct {
	Raw *float64 `json:"raw"`
	Fmt string   `json:"fmt"`
}

type SummaryDetail struct {
	PreviousClose                Value `json:"previousClose"`
	DividendYield                Value `json:"dividendYield"`
	Beta                         Value `json:"beta"`
	ForwardPE                    Value `json:"forwardPE"`
	AverageVolume                Value `json:"averageVolume"`
	PriceToSalesTrailing12Months Value `json:"priceToSalesTrailing12Months"`
}

type FinancialData struct {
	CurrentPrice     Value `json:"currentPrice"`
	DebtToEquity     Value `json:"debtToEquity"`
	OperatingMargins Value `json:"operatingMargins"`
}

type DefaultKeyStatistics struct {
	ForwardPE Value `json:"forwardPE"`
	Beta      Value `json:"beta"`
}

type AssetProfile struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

type ESGScores struct {
	TotalEsg Value `json:"totalEsg"`
}
