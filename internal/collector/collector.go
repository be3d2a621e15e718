package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"NextDay/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Series model.DailySeries
	Err    error
	Days   int     // generated history length when Series is nil
	Price  float64 // generated base price when Series is nil
	Now    func() time.Time
	Calls  int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailySeries(_ context.Context, _ string) (model.DailySeries, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Series != nil {
		return m.Series, nil
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	days, price := m.Days, m.Price
	if days == 0 {
		days = 200
	}
	if price == 0 {
		price = 100
	}
	return GenerateMockSeries(now(), days, price), nil
}

// GenerateMockSeries builds a weekday-only series of the given number of
// calendar days ending yesterday, with a deterministic zig-zag drift.
func GenerateMockSeries(now time.Time, days int, basePrice float64) model.DailySeries {
	series := make(model.DailySeries)
	y, mo, d := now.UTC().Date()
	today := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
	for i := days; i >= 1; i-- {
		day := today.AddDate(0, 0, -i)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		step := float64(i%7) - 3
		p := basePrice * (1 + float64(days-i)*0.001 + step*0.004)
		series[day.Format(model.DateLayout)] = decimal.NewFromFloat(p).Round(2)
	}
	return series
}

// ValidateSeries rejects an empty series or one holding a non-positive price.
func ValidateSeries(series model.DailySeries) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: empty series", ErrMalformedResponse)
	}
	for date, p := range series {
		if !p.IsPositive() {
			return fmt.Errorf("%w: non-positive price on %s", ErrMalformedResponse, date)
		}
	}
	return nil
}

// Collector turns a user-entered symbol into a validated dataset.
type Collector struct {
	Fetcher Fetcher
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, Now: time.Now}
}

// Collect normalizes symbol and fetches its series. Upstream failures are
// returned as-is, never retried.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.Dataset, error) {
	symbol = NormalizeSymbol(symbol)
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}

	series, err := c.Fetcher.FetchDailySeries(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	if err := ValidateSeries(series); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	log.Printf("[INFO] fetched %d trading days for %s from %s", len(series), symbol, c.Fetcher.Name())

	return &model.Dataset{
		Symbol:    symbol,
		Series:    series,
		Source:    c.Fetcher.Name(),
		FetchedAt: c.Now(),
	}, nil
}
