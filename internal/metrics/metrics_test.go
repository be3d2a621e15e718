package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"NextDay/internal/collector"
)

func TestObserveFetch(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveFetch(time.Now(), nil)
	m.ObserveFetch(time.Now(), collector.ErrRateLimited)
	m.ObserveFetch(time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("rate_limited")); got != 1 {
		t.Errorf("rate_limited: expected 1, got %v", got)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("upstream")); got != 1 {
		t.Errorf("upstream: expected 1, got %v", got)
	}
	if n := testutil.CollectAndCount(m.FetchDuration); n != 1 {
		t.Errorf("expected one histogram, got %d", n)
	}
}

func TestGuessAndCacheCounters(t *testing.T) {
	m := NewMetrics(nil)
	m.ObserveGuess(true)
	m.ObserveGuess(true)
	m.ObserveGuess(false)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)

	tests := []struct {
		c    prometheus.Collector
		want float64
	}{
		{m.Guesses.WithLabelValues("correct"), 2},
		{m.Guesses.WithLabelValues("incorrect"), 1},
		{m.CacheLookups.WithLabelValues("hit"), 1},
		{m.CacheLookups.WithLabelValues("miss"), 2},
	}
	for i, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("case %d: expected %v, got %v", i, tt.want, got)
		}
	}
}

func TestHandler(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ActiveSessions.Set(3)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "nextday_active_sessions 3") {
		t.Errorf("gauge missing from output:\n%s", rec.Body.String())
	}
}
