package store

import (
	"context"
	"time"

	"NextDay/internal/model"
)

// Entry is a cached provider response.
type Entry struct {
	Series    model.DailySeries
	FetchedAt time.Time
}

// SeriesCache stores fetched series keyed by provider and symbol.
// Get returns (nil, nil) on a miss or for an entry without points.
type SeriesCache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, e *Entry) error
	Purge(ctx context.Context, olderThan time.Time) (int64, error)
	Close() error
}

// Key builds the cache key for a provider and symbol.
func Key(source, symbol string) string {
	return source + ":" + symbol
}
