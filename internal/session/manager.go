package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"NextDay/internal/calendar"
	"NextDay/internal/collector"
	"NextDay/internal/game"
	"NextDay/internal/metrics"
	"NextDay/internal/stats"
)

// ErrSessionNotFound is returned for an unknown or expired key.
var ErrSessionNotFound = errors.New("round not found")

// Manager owns every live round, one per key. Each key maps to its own
// Session, so rounds never share state.
type Manager struct {
	collector *collector.Collector
	metrics   *metrics.Metrics
	Now       func() time.Time

	selMu    sync.Mutex
	selector *game.Selector

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager. A nil m records into a private registry.
func NewManager(col *collector.Collector, sel *game.Selector, m *metrics.Metrics) *Manager {
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	return &Manager{
		collector: col,
		metrics:   m,
		Now:       time.Now,
		selector:  sel,
		sessions:  make(map[string]*Session),
	}
}

// Start fetches symbol and opens a new round under key, discarding any round
// the key held before. An empty key gets a fresh id. The returned events are
// those emitted while starting.
func (m *Manager) Start(ctx context.Context, key, symbol string) (View, []Event, error) {
	if key == "" {
		key = uuid.NewString()
	}
	m.discard(key)

	began := time.Now()
	ds, err := m.collector.Collect(ctx, symbol)
	m.metrics.ObserveFetch(began, err)
	if err != nil {
		return View{}, nil, err
	}

	cal, err := calendar.New(ds.Series)
	if err != nil {
		return View{}, nil, fmt.Errorf("%w: %v", collector.ErrMalformedResponse, err)
	}
	m.selMu.Lock()
	startDate, err := m.selector.Select(cal)
	m.selMu.Unlock()
	if err != nil {
		return View{}, nil, err
	}
	state, err := game.Build(cal, ds.Series, startDate, ds.Symbol)
	if err != nil {
		return View{}, nil, err
	}

	s := newSession(key, ds.Source, m.Now())
	s.round = game.NewRound(state, s.events)
	s.round.Start()
	view := s.viewLocked()
	events := s.events.drain()

	m.mu.Lock()
	prev := m.sessions[key]
	m.sessions[key] = s
	n := len(m.sessions)
	m.mu.Unlock()
	if prev != nil {
		m.closeSession(prev, "replaced")
	}

	m.metrics.RoundsStarted.WithLabelValues(ds.Source).Inc()
	m.metrics.ActiveSessions.Set(float64(n))
	log.Printf("[INFO] round %s started: %s from %s, start date %s", key, ds.Symbol, ds.Source, startDate)

	m.observeEnded(events)
	return view, events, nil
}

// Guess plays one step of the round under key.
func (m *Manager) Guess(key string, up bool) (View, game.Outcome, []Event, error) {
	s, err := m.session(key)
	if err != nil {
		return View{}, game.Outcome{}, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = m.Now()

	out, err := s.round.Guess(up)
	if err != nil {
		return s.viewLocked(), game.Outcome{}, nil, err
	}
	m.metrics.ObserveGuess(out.Correct)
	events := s.events.drain()
	m.observeEnded(events)
	return s.viewLocked(), out, events, nil
}

// End stops the round under key. ended is false when it was already over.
func (m *Manager) End(key string) (view View, events []Event, ended bool, err error) {
	s, err := m.session(key)
	if err != nil {
		return View{}, nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = m.Now()

	ended = s.round.End()
	events = s.events.drain()
	m.observeEnded(events)
	return s.viewLocked(), events, ended, nil
}

// Get returns the current view of the round under key.
func (m *Manager) Get(key string) (View, error) {
	s, err := m.session(key)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(), nil
}

// Summary returns the statistics of the round under key.
func (m *Manager) Summary(key string) (stats.Summary, error) {
	s, err := m.session(key)
	if err != nil {
		return stats.Summary{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked(), nil
}

// Subscribe streams future events of the round under key. The channel is
// closed when the round is discarded or cancel is called.
func (m *Manager) Subscribe(key string) (<-chan Event, func(), error) {
	s, err := m.session(key)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.events.subscribe()
	return ch, cancel, nil
}

// Sweep drops rounds untouched for longer than idle and reports how many.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.Now().Add(-idle)
	var expired []*Session

	m.mu.Lock()
	for key, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, key)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, s := range expired {
		m.closeSession(s, "expired")
	}
	m.metrics.ActiveSessions.Set(float64(n))
	return len(expired)
}

// Len reports the number of live rounds.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) session(key string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, key)
	}
	return s, nil
}

func (m *Manager) discard(key string) {
	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	n := len(m.sessions)
	m.mu.Unlock()
	if ok {
		m.closeSession(s, "replaced")
		m.metrics.ActiveSessions.Set(float64(n))
	}
}

// closeSession counts a round dropped while still active under reason.
func (m *Manager) closeSession(s *Session, reason string) {
	s.mu.Lock()
	if s.round.CanGuess() {
		m.metrics.RoundsEnded.WithLabelValues(reason).Inc()
	}
	s.mu.Unlock()
	s.events.close()
}

func (m *Manager) observeEnded(events []Event) {
	for _, e := range events {
		if e.Type == EventEnded {
			m.metrics.RoundsEnded.WithLabelValues(string(e.Reason)).Inc()
		}
	}
}
