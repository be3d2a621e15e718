package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"NextDay/internal/model"
)

// DefaultAlphaVantageURL is the public Alpha Vantage endpoint host.
const DefaultAlphaVantageURL = "https://www.alphavantage.co"

const adjustedCloseField = "5. adjusted close"

// AlphaVantageFetcher implements Fetcher using TIME_SERIES_DAILY_ADJUSTED.
type AlphaVantageFetcher struct {
	client     *resty.Client
	apiKey     string
	outputSize string
}

// NewAlphaVantageFetcher creates a fetcher with optional proxy support.
func NewAlphaVantageFetcher(baseURL, apiKey, proxyURL string, timeout time.Duration) *AlphaVantageFetcher {
	if baseURL == "" {
		baseURL = DefaultAlphaVantageURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)
	if proxyURL != "" {
		client.SetProxy(proxyURL)
	}
	return &AlphaVantageFetcher{client: client, apiKey: apiKey, outputSize: "full"}
}

func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

func (f *AlphaVantageFetcher) FetchDailySeries(ctx context.Context, symbol string) (model.DailySeries, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function":   "TIME_SERIES_DAILY_ADJUSTED",
			"symbol":     symbol,
			"outputsize": f.outputSize,
			"apikey":     f.apiKey,
		}).
		Get("/query")
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: alphavantage status %d", ErrRateLimited, resp.StatusCode())
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: network error (%d)", resp.StatusCode())
	}
	return ParseAlphaVantage(resp.Body())
}

// avResponse is the TIME_SERIES_DAILY_ADJUSTED payload. Error and throttling
// notices come back with status 200 in dedicated fields.
type avResponse struct {
	ErrorMessage string                       `json:"Error Message"`
	Note         string                       `json:"Note"`
	Information  string                       `json:"Information"`
	MetaData     map[string]string            `json:"Meta Data"`
	TimeSeries   map[string]map[string]string `json:"Time Series (Daily)"`
}

// ParseAlphaVantage decodes a TIME_SERIES_DAILY_ADJUSTED body into a series.
func ParseAlphaVantage(body []byte) (model.DailySeries, error) {
	var r avResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}
	if r.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, r.ErrorMessage)
	}
	if r.Note != "" {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, r.Note)
	}
	if r.Information != "" {
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, r.Information)
	}
	if r.MetaData == nil || r.TimeSeries == nil {
		return nil, fmt.Errorf("%w: missing Meta Data or Time Series (Daily)", ErrMalformedResponse)
	}

	series := make(model.DailySeries, len(r.TimeSeries))
	for date, fields := range r.TimeSeries {
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			return nil, fmt.Errorf("%w: bad date %q", ErrMalformedResponse, date)
		}
		raw, ok := fields[adjustedCloseField]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no %q", ErrMalformedResponse, date, adjustedCloseField)
		}
		price, err := decimal.NewFromString(raw)
		if err != nil || !price.IsPositive() {
			return nil, fmt.Errorf("%w: %s adjusted close %q", ErrMalformedResponse, date, raw)
		}
		series[date] = price
	}
	return series, nil
}
