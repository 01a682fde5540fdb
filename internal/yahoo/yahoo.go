// Package yahoo is a small client for the Yahoo Finance chart and quoteSummary endpoints.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Yahoo Finance query host.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultCookieURL is visited once to obtain the session cookie the crumb is bound to.
	DefaultCookieURL = "https://fc.yahoo.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is the default request rate (requests per second).
	DefaultRateLimit = 4

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// FundamentalsModules are the quoteSummary modules a fundamentals snapshot is built from.
var FundamentalsModules = []string{
	"summaryDetail",
	"financialData",
	"defaultKeyStatistics",
	"assetProfile",
	"esgScores",
}

var (
	// ErrNotFound indicates Yahoo does not know the requested symbol.
	ErrNotFound = errors.New("yahoo: symbol not found")

	// ErrNoPriceData indicates a chart response carried no usable closes.
	ErrNoPriceData = errors.New("yahoo: no price data returned")
)

// StatusError is returned for non-success HTTP responses that carry no Yahoo error payload.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("yahoo: unexpected status %d", e.StatusCode)
}

// Client is the subset of the Yahoo API the market data provider depends on.
type Client interface {
	QueryChartByRange(ctx context.Context, symbol, chartRange string) (Response, error)
	QueryQuoteSummary(ctx context.Context, symbol string, modules ...string) (QuoteSummary, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance.
// Requests are rate limited; the crumb needed by quoteSummary is fetched lazily
// and refreshed when Yahoo rejects it.
type FinanceClient struct {
	baseURL    string
	cookieURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger

	mu    sync.Mutex
	crumb string
}

// ClientOption configures a FinanceClient.
type ClientOption func(*FinanceClient)

// WithBaseURL sets a custom query host.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *FinanceClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithCookieURL sets the URL visited to obtain a session cookie.
func WithCookieURL(cookieURL string) ClientOption {
	return func(c *FinanceClient) {
		c.cookieURL = cookieURL
	}
}

// WithHTTPClient sets a custom HTTP client. A cookie jar is added if it has none.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *FinanceClient) {
		c.httpClient = httpClient
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *FinanceClient) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *FinanceClient) {
		c.logger = logger
	}
}

// NewFinanceClient creates a new Yahoo Finance client.
func NewFinanceClient(opts ...ClientOption) *FinanceClient {
	c := &FinanceClient{
		baseURL:    DefaultBaseURL,
		cookieURL:  DefaultCookieURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		// cookiejar.New only fails when given options with a broken PublicSuffixList.
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}

	return c
}

// QueryChartByRange fetches daily price data for symbol over a Yahoo range
// identifier such as "1mo" or "1y".
func (c *FinanceClient) QueryChartByRange(ctx context.Context, symbol, chartRange string) (Response, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", chartRange)
	params.Set("includePrePost", "false")
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	var response Response
	status, err := c.getJSON(ctx, reqURL, &response)
	if err != nil {
		return Response{}, err
	}

	if response.Chart.Error != nil {
		if response.Chart.Error.Code == "Not Found" {
			return Response{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}
		return Response{}, fmt.Errorf("yahoo error: %w", response.Chart.Error)
	}
	if status != http.StatusOK {
		return Response{}, &StatusError{StatusCode: status}
	}
	if len(response.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
	}

	return response, nil
}

// QueryQuoteSummary fetches the given quoteSummary modules for symbol.
// A rejected crumb is refreshed once before giving up.
func (c *FinanceClient) QueryQuoteSummary(ctx context.Context, symbol string, modules ...string) (QuoteSummary, error) {
	if len(modules) == 0 {
		modules = FundamentalsModules
	}

	for attempt := 0; ; attempt++ {
		crumb, err := c.getCrumb(ctx)
		if err != nil {
			return QuoteSummary{}, err
		}

		params := url.Values{}
		params.Set("modules", strings.Join(modules, ","))
		params.Set("crumb", crumb)
		reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

		var response QuoteSummaryResponse
		status, err := c.getJSON(ctx, reqURL, &response)
		if err != nil {
			return QuoteSummary{}, err
		}

		if (status == http.StatusUnauthorized || status == http.StatusForbidden) && attempt == 0 {
			c.logger.Debug().Str("symbol", symbol).Msg("yahoo crumb rejected, refreshing")
			c.resetCrumb()
			continue
		}

		if response.QuoteSummary.Error != nil {
			if response.QuoteSummary.Error.Code == "Not Found" {
				return QuoteSummary{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
			}
			return QuoteSummary{}, fmt.Errorf("yahoo error: %w", response.QuoteSummary.Error)
		}
		if status != http.StatusOK {
			return QuoteSummary{}, &StatusError{StatusCode: status}
		}
		if len(response.QuoteSummary.Result) == 0 {
			return QuoteSummary{}, fmt.Errorf("%w: %s", ErrNotFound, symbol)
		}

		return response.QuoteSummary.Result[0], nil
	}
}

// ParseChart converts a raw chart response into a structured price chart.
// Days without a close are dropped; a missing volume reads as zero.
func ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, ErrNoPriceData
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 || len(result.Indicators.Quote) == 0 {
		return PriceChart{}, ErrNoPriceData
	}
	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths: %d timestamps, %d closes", len(result.Timestamp), len(quote.Close))
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if quote.Close[i] == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(ts, 0).UTC(),
			PriceClose: *quote.Close[i],
			Volume:     intAt(quote.Volume, i),
		})
	}

	if len(indicators) == 0 {
		return PriceChart{}, ErrNoPriceData
	}

	return PriceChart{
		Symbol:     result.Meta.Symbol,
		Indicators: indicators,
	}, nil
}

func intAt(values []*int64, i int) int64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

// getCrumb returns the cached crumb, fetching a session cookie and a new crumb when needed.
func (c *FinanceClient) getCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	// The cookie host answers 404 but still sets the session cookie.
	if resp, err := c.do(ctx, c.cookieURL); err == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	} else {
		c.logger.Debug().Err(err).Msg("yahoo cookie request failed")
	}

	resp, err := c.do(ctx, c.baseURL+"/v1/test/getcrumb")
	if err != nil {
		return "", fmt.Errorf("failed to fetch yahoo crumb: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("failed to read yahoo crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK || crumb == "" || strings.HasPrefix(crumb, "{") {
		return "", fmt.Errorf("failed to fetch yahoo crumb: %w", &StatusError{StatusCode: resp.StatusCode})
	}

	c.crumb = crumb
	return crumb, nil
}

func (c *FinanceClient) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

// getJSON performs a GET and decodes the body into out. Non-2xx responses are
// still decoded, since Yahoo reports most failures in the JSON payload, and the
// status is returned for the caller to judge.
func (c *FinanceClient) getJSON(ctx context.Context, reqURL string, out any) (int, error) {
	resp, err := c.do(ctx, reqURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read yahoo response: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		// Error pages are not always JSON; the caller reports the status instead.
		if resp.StatusCode != http.StatusOK {
			return resp.StatusCode, nil
		}
		return resp.StatusCode, fmt.Errorf("failed to decode yahoo response: %w", err)
	}

	return resp.StatusCode, nil
}

// do executes a rate-limited GET with the headers Yahoo expects from a browser.
func (c *FinanceClient) do(ctx context.Context, reqURL string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("yahoo rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	c.logger.Debug().
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("yahoo request")

	return resp, nil
}
