package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"NextDay/internal/model"
)

// AlpacaFetcher implements Fetcher using Alpaca daily bars adjusted for
// splits and dividends.
type AlpacaFetcher struct {
	client   *marketdata.Client
	feed     marketdata.Feed
	Lookback time.Duration
	Now      func() time.Time
}

// NewAlpacaFetcher creates an Alpaca market-data fetcher.
func NewAlpacaFetcher(apiKey, apiSecret, dataURL, feed string, lookback time.Duration) *AlpacaFetcher {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if feed == "" {
		feed = "iex"
	}
	return &AlpacaFetcher{
		client:   marketdata.NewClient(opts),
		feed:     marketdata.Feed(feed),
		Lookback: lookback,
		Now:      time.Now,
	}
}

func (f *AlpacaFetcher) Name() string { return "alpaca" }

func (f *AlpacaFetcher) FetchDailySeries(ctx context.Context, symbol string) (model.DailySeries, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	end := f.Now()
	bars, err := f.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      end.Add(-f.Lookback),
		End:        end,
		Adjustment: marketdata.All,
		Feed:       f.feed,
	})
	if err != nil {
		return nil, classifyMessage("alpaca GetBars", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: alpaca returned no bars for %s", ErrNotFound, symbol)
	}

	series := make(model.DailySeries, len(bars))
	for _, b := range bars {
		if b.Close <= 0 {
			return nil, fmt.Errorf("%w: alpaca close %v at %s", ErrMalformedResponse, b.Close, b.Timestamp)
		}
		series[b.Timestamp.UTC().Format(model.DateLayout)] = decimal.NewFromFloat(b.Close)
	}
	return series, nil
}
