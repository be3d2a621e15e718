package store

import (
	"context"
	"time"
)

// NoopCache is used when caching is disabled.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (n *NoopCache) Get(context.Context, string) (*Entry, error)     { return nil, nil }
func (n *NoopCache) Put(context.Context, string, *Entry) error       { return nil }
func (n *NoopCache) Purge(context.Context, time.Time) (int64, error) { return 0, nil }
func (n *NoopCache) Close() error                                    { return nil }
