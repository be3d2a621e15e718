package collector

import (
	"context"
	"log"
	"time"

	"NextDay/internal/model"
	"NextDay/internal/store"
)

// CachedFetcher serves recent responses from a SeriesCache and falls back to
// the wrapped Fetcher on a miss, a stale entry or a cache failure. Series
// that fail ValidateSeries are passed through but never stored.
type CachedFetcher struct {
	Fetcher Fetcher
	Cache   store.SeriesCache
	TTL     time.Duration
	Now     func() time.Time

	// OnLookup is called with true for a cache hit and false for a miss.
	OnLookup func(hit bool)
}

// NewCachedFetcher wraps f with cache c.
func NewCachedFetcher(f Fetcher, c store.SeriesCache, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{Fetcher: f, Cache: c, TTL: ttl, Now: time.Now}
}

func (c *CachedFetcher) Name() string { return c.Fetcher.Name() }

func (c *CachedFetcher) FetchDailySeries(ctx context.Context, symbol string) (model.DailySeries, error) {
	key := store.Key(c.Fetcher.Name(), symbol)
	now := c.Now()

	e, err := c.Cache.Get(ctx, key)
	if err != nil {
		log.Printf("[WARN] cache get %s: %v", key, err)
	}
	if e != nil && len(e.Series) > 0 && now.Sub(e.FetchedAt) < c.TTL {
		c.lookup(true)
		return e.Series, nil
	}
	c.lookup(false)

	series, err := c.Fetcher.FetchDailySeries(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if err := ValidateSeries(series); err != nil {
		log.Printf("[WARN] not caching %s: %v", key, err)
		return series, nil
	}
	if err := c.Cache.Put(ctx, key, &store.Entry{Series: series, FetchedAt: now}); err != nil {
		log.Printf("[WARN] cache put %s: %v", key, err)
	}
	return series, nil
}

func (c *CachedFetcher) lookup(hit bool) {
	if c.OnLookup != nil {
		c.OnLookup(hit)
	}
}
