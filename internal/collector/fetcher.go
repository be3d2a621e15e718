package collector

import (
	"context"

	"NextDay/internal/model"
)

// Fetcher loads the daily adjusted-close history of a symbol.
// Implementations fail with ErrNotFound, ErrRateLimited or ErrMalformedResponse
// where the upstream makes the cause known.
type Fetcher interface {
	FetchDailySeries(ctx context.Context, symbol string) (model.DailySeries, error)
	Name() string
}
