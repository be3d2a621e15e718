package main

import (
	"fmt"
	"log"
	"time"

	"NextDay/internal/collector"
	"NextDay/internal/config"
	"NextDay/internal/game"
	"NextDay/internal/metrics"
	"NextDay/internal/store"
)

// buildFetcher returns the provider named in the config, without caching.
func buildFetcher(cfg *config.Config) (collector.Fetcher, error) {
	ds := cfg.DataSource
	switch ds.Provider {
	case "alphavantage":
		return collector.NewAlphaVantageFetcher(ds.BaseURL, ds.APIKey, cfg.Proxy, ds.Timeout), nil
	case "yahoo":
		return collector.NewYahooFetcher(ds.Lookback), nil
	case "alpaca":
		return collector.NewAlpacaFetcher(ds.APIKey, ds.APISecret, ds.BaseURL, ds.Feed, ds.Lookback), nil
	case "file":
		return collector.NewFileFetcher(ds.DataDir), nil
	case "mock":
		return &collector.MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", ds.Provider)
	}
}

// buildCache opens the configured cache, falling back to no caching when the
// backend cannot be reached.
func buildCache(cfg *config.Config) store.SeriesCache {
	switch cfg.Cache.Backend {
	case "sqlite":
		c, err := store.NewSQLiteCache(cfg.Cache.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite cache failed, using noop: %v", err)
			return store.NewNoopCache()
		}
		return c
	case "redis":
		c, err := store.NewRedisCache(store.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			log.Printf("[WARN] init redis cache failed, using noop: %v", err)
			return store.NewNoopCache()
		}
		return c
	default:
		return store.NewNoopCache()
	}
}

// buildCollector wires provider and cache. The caller closes the cache.
func buildCollector(cfg *config.Config, met *metrics.Metrics) (*collector.Collector, store.SeriesCache, error) {
	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return nil, nil, err
	}
	cache := buildCache(cfg)
	if cfg.Cache.Backend != "none" && cfg.DataSource.Provider != "mock" {
		cf := collector.NewCachedFetcher(fetcher, cache, cfg.Cache.TTL)
		if met != nil {
			cf.OnLookup = met.CacheLookup
		}
		fetcher = cf
	}
	log.Printf("[INFO] data source: %s, cache: %s", fetcher.Name(), cfg.Cache.Backend)
	return collector.NewCollector(fetcher), cache, nil
}

// newSelector builds a start-date selector. Seed 0 seeds from the clock.
func newSelector(cfg *config.Config, seed int64) *game.Selector {
	if seed == 0 {
		seed = cfg.Game.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sel := game.NewSelector(seed)
	sel.MinDaysBack = cfg.Game.MinDaysBack
	sel.MaxDaysBack = cfg.Game.MaxDaysBack
	return sel
}
