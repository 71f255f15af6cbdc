// Package dashboard provides a client for the portfolio dashboard backend API
package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/finote/internal/common"
	"github.com/bobmcallan/finote/internal/models"
)

const (
	DefaultBaseURL   = "http://localhost:8000"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 5 // requests per second

	// SessionCookieName is the cookie the backend authenticates with.
	SessionCookieName = "sessionid"

	portfolioPath = "/dashboard/api/portfolio/"
	sourceName    = "backend"
)

// Client implements the DashboardClient and SeriesSource interfaces
type Client struct {
	baseURL    string
	session    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithSessionCookie sets the default session forwarded to the backend. A session
// carried on the request context takes precedence.
func WithSessionCookie(session string) ClientOption {
	return func(c *Client) {
		c.session = session
	}
}

// NewClient creates a new dashboard backend client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dashboard API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Unauthorized reports whether the backend rejected the session.
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if session := common.ResolveSession(ctx, c.session); session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session})
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Dashboard API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// flexDecimal handles JSON values that may be a number, a decimal string or null.
type flexDecimal struct {
	value decimal.Decimal
	valid bool
}

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = flexDecimal{}
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	if s == "" || strings.EqualFold(s, "N/A") {
		*f = flexDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		// Unparseable figures are treated as absent, not as a failed payload.
		*f = flexDecimal{}
		return nil
	}
	*f = flexDecimal{value: d, valid: true}
	return nil
}

func (f flexDecimal) float() float64 {
	if !f.valid {
		return 0
	}
	v, _ := f.value.Float64()
	return v
}

type timeSeriesItem struct {
	Date                 string      `json:"date"`
	MarketValueKRW       flexDecimal `json:"market_value_krw"`
	MarketValue          flexDecimal `json:"market_value"`
	CumulativeReturnRate flexDecimal `json:"cumulative_return_rate"`
}

type portfolioResponse struct {
	TimeSeriesData []timeSeriesItem `json:"timeseries_data"`
}

// marketValue prefers the KRW-converted figure.
func (i timeSeriesItem) marketValue() float64 {
	if i.MarketValueKRW.valid {
		return i.MarketValueKRW.float()
	}
	return i.MarketValue.float()
}

func parseItemDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// GetTimeSeries fetches the portfolio history for assetType ("" for all assets).
func (c *Client) GetTimeSeries(ctx context.Context, assetType string) (*models.DashboardTimeSeries, error) {
	params := url.Values{}
	if assetType != "" {
		params.Set("asset_type", assetType)
	}

	var resp portfolioResponse
	if err := c.get(ctx, portfolioPath, params, &resp); err != nil {
		return nil, err
	}

	result := toDashboardSeries(resp.TimeSeriesData)
	result.AssetType = assetType

	c.logger.Debug().
		Str("asset_type", assetType).
		Int("items", len(resp.TimeSeriesData)).
		Int("points", len(result.MarketValue)).
		Msg("Dashboard time series loaded")

	return result, nil
}

// toDashboardSeries drops undated items, keeps the last item per date and
// sorts oldest first.
func toDashboardSeries(items []timeSeriesItem) *models.DashboardTimeSeries {
	byDate := make(map[time.Time]timeSeriesItem, len(items))
	for _, item := range items {
		d, ok := parseItemDate(item.Date)
		if !ok {
			continue
		}
		byDate[d] = item
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := &models.DashboardTimeSeries{
		MarketValue: make(models.RawTimeSeries, len(dates)),
		ReturnRate:  make(models.RawTimeSeries, len(dates)),
	}
	for i, d := range dates {
		item := byDate[d]
		out.MarketValue[i] = models.TimeSeriesPoint{Date: d, Value: item.marketValue()}
		out.ReturnRate[i] = models.TimeSeriesPoint{Date: d, Value: item.CumulativeReturnRate.float()}
	}
	return out
}

// Name implements SeriesSource.
func (c *Client) Name() string {
	return sourceName
}

// LoadSeries implements SeriesSource using GetTimeSeries.
func (c *Client) LoadSeries(ctx context.Context, key string, metric models.Metric) (models.RawTimeSeries, error) {
	ts, err := c.GetTimeSeries(ctx, key)
	if err != nil {
		return nil, err
	}
	return ts.Series(metric), nil
}
