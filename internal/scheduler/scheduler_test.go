package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"NextDay/internal/collector"
	"NextDay/internal/game"
	"NextDay/internal/metrics"
	"NextDay/internal/session"
	"NextDay/internal/store"
)

// countingCache records Purge calls.
type countingCache struct {
	store.NoopCache
	cutoffs []time.Time
	removed int64
	err     error
}

func (c *countingCache) Purge(_ context.Context, olderThan time.Time) (int64, error) {
	c.cutoffs = append(c.cutoffs, olderThan)
	return c.removed, c.err
}

func TestRegisterAll(t *testing.T) {
	s := NewScheduler(context.Background(), store.NewNoopCache(), nil, nil, time.Hour, time.Hour)
	if err := s.RegisterAll("0 0 3 * * *", "0 */5 * * * *"); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}
	if n := len(s.Cron.Entries()); n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}

	bad := NewScheduler(context.Background(), store.NewNoopCache(), nil, nil, time.Hour, time.Hour)
	if err := bad.RegisterAll("every day", "0 */5 * * * *"); err == nil {
		t.Error("expected an error for an invalid cron expression")
	}
}

func TestPurgeTask(t *testing.T) {
	now := time.Date(2024, 6, 28, 3, 0, 0, 0, time.UTC)
	cache := &countingCache{removed: 4}
	met := metrics.NewMetrics(nil)
	s := NewScheduler(context.Background(), cache, nil, met, 24*time.Hour, time.Hour)
	s.Now = func() time.Time { return now }

	s.purgeTask()
	if len(cache.cutoffs) != 1 || !cache.cutoffs[0].Equal(now.Add(-24*time.Hour)) {
		t.Errorf("unexpected cutoffs %v", cache.cutoffs)
	}
	if got := testutil.ToFloat64(met.CachePurged); got != 4 {
		t.Errorf("expected 4 purged, got %v", got)
	}

	cache.err = errors.New("disk full")
	s.purgeTask()
	if got := testutil.ToFloat64(met.CachePurged); got != 4 {
		t.Errorf("failed purge must not count, got %v", got)
	}
}

type zeroRand struct{}

func (zeroRand) Intn(int) int { return 0 }

func TestSweepTask(t *testing.T) {
	now := time.Date(2024, 6, 28, 15, 0, 0, 0, time.UTC)
	f := &collector.MockFetcher{Series: collector.GenerateMockSeries(now, 200, 100)}
	sel := &game.Selector{Rand: zeroRand{}, Now: func() time.Time { return now }, MinDaysBack: 100, MaxDaysBack: 7}
	mgr := session.NewManager(collector.NewCollector(f), sel, nil)
	mgr.Now = func() time.Time { return now }
	if _, _, err := mgr.Start(context.Background(), "k", "AAPL"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s := NewScheduler(context.Background(), store.NewNoopCache(), mgr, nil, time.Hour, 30*time.Minute)
	s.sweepTask()
	if mgr.Len() != 1 {
		t.Fatalf("fresh round must survive, got %d", mgr.Len())
	}
	now = now.Add(time.Hour)
	s.RunNow()
	if mgr.Len() != 0 {
		t.Errorf("idle round must be swept, got %d", mgr.Len())
	}
}
