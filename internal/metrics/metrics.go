package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"NextDay/internal/collector"
)

// Metrics holds all Prometheus metrics for the game server.
type Metrics struct {
	RoundsStarted  *prometheus.CounterVec // labels: source
	RoundsEnded    *prometheus.CounterVec // labels: reason=exhausted|user|expired|replaced
	Guesses        *prometheus.CounterVec // labels: result=correct|incorrect
	FetchErrors    *prometheus.CounterVec // labels: kind
	CacheLookups   *prometheus.CounterVec // labels: result=hit|miss
	ActiveSessions prometheus.Gauge
	FetchDuration  prometheus.Histogram
	CachePurged    prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics registers all collectors on reg. A nil reg uses a private
// registry so several instances can coexist in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		RoundsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nextday_rounds_started_total",
			Help: "Rounds started, by data source",
		}, []string{"source"}),
		RoundsEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nextday_rounds_ended_total",
			Help: "Rounds finished, by reason",
		}, []string{"reason"}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nextday_guesses_total",
			Help: "Guesses scored, by result",
		}, []string{"result"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nextday_fetch_errors_total",
			Help: "Failed series fetches, by error kind",
		}, []string{"kind"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nextday_cache_lookups_total",
			Help: "Series cache lookups, by result",
		}, []string{"result"}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nextday_active_sessions",
			Help: "Sessions currently holding a round",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nextday_fetch_duration_seconds",
			Help:    "Latency of series fetches including cache",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CachePurged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nextday_cache_purged_total",
			Help: "Series cache entries removed by the purge job",
		}),
	}
	reg.MustRegister(
		m.RoundsStarted,
		m.RoundsEnded,
		m.Guesses,
		m.FetchErrors,
		m.CacheLookups,
		m.ActiveSessions,
		m.FetchDuration,
		m.CachePurged,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// ObserveFetch records the latency and, on failure, the error kind.
func (m *Metrics) ObserveFetch(start time.Time, err error) {
	m.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(collector.Kind(err)).Inc()
	}
}

// ObserveGuess counts one scored guess.
func (m *Metrics) ObserveGuess(correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.Guesses.WithLabelValues(result).Inc()
}

// CacheLookup matches collector.CachedFetcher.OnLookup.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
