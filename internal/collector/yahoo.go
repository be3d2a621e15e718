package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"

	"NextDay/internal/model"
)

// YahooFetcher implements Fetcher using the Yahoo Finance chart API.
type YahooFetcher struct {
	SymbolMap map[string]string // maps user-facing symbol to Yahoo ticker
	Lookback  time.Duration
	Now       func() time.Time
}

// NewYahooFetcher creates a Yahoo fetcher covering lookback of history.
func NewYahooFetcher(lookback time.Duration) *YahooFetcher {
	return &YahooFetcher{
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"SP500":  "^GSPC",
			"NDX":    "^NDX",
			"DJI":    "^DJI",
		},
		Lookback: lookback,
		Now:      time.Now,
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

func (f *YahooFetcher) FetchDailySeries(ctx context.Context, symbol string) (model.DailySeries, error) {
	end := f.Now()
	start := end.Add(-f.Lookback)
	iter := chart.Get(&chart.Params{
		Symbol:   f.yahooSymbol(symbol),
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	series := make(model.DailySeries)
	for iter.Next() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		bar := iter.Bar()
		if !bar.AdjClose.IsPositive() {
			continue // skip null bars (holidays etc.)
		}
		date := time.Unix(int64(bar.Timestamp), 0).UTC().Format(model.DateLayout)
		series[date] = bar.AdjClose
	}
	if err := iter.Err(); err != nil {
		return nil, classifyMessage("yahoo chart", err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: yahoo returned no bars for %s", ErrNotFound, symbol)
	}
	return series, nil
}
