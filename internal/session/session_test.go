package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"NextDay/internal/collector"
	"NextDay/internal/game"
	"NextDay/internal/metrics"
	"NextDay/internal/model"
)

// Friday; the newest eligible start date is 2024-06-21.
var testNow = time.Date(2024, 6, 28, 15, 0, 0, 0, time.UTC)

// pickRand returns a fixed index, clamped to the range.
type pickRand int

func (p pickRand) Intn(n int) int {
	if int(p) >= n {
		return n - 1
	}
	return int(p)
}

func newTestManager(pick int, fetcher *collector.MockFetcher) (*Manager, *metrics.Metrics) {
	if fetcher.Series == nil && fetcher.Err == nil {
		fetcher.Series = collector.GenerateMockSeries(testNow, 200, 100)
	}
	sel := &game.Selector{
		Rand:        pickRand(pick),
		Now:         func() time.Time { return testNow },
		MinDaysBack: game.DefaultMinDaysBack,
		MaxDaysBack: game.DefaultMaxDaysBack,
	}
	met := metrics.NewMetrics(nil)
	m := NewManager(collector.NewCollector(fetcher), sel, met)
	m.Now = func() time.Time { return testNow }
	return m, met
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func sameTypes(got []Event, want ...EventType) bool {
	types := eventTypes(got)
	if len(types) != len(want) {
		return false
	}
	for i := range want {
		if types[i] != want[i] {
			return false
		}
	}
	return true
}

func TestManager_PlayToExhaustion(t *testing.T) {
	m, met := newTestManager(1000, &collector.MockFetcher{})

	view, events, err := m.Start(context.Background(), "", " aapl ")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if view.ID == "" || view.Symbol != "AAPL" || view.Source != "mock" {
		t.Errorf("unexpected view %+v", view)
	}
	if view.CurrentDate != "2024-06-21" || len(view.Points) != game.SeedSize || !view.CanGuess {
		t.Errorf("unexpected initial view %+v", view)
	}
	if !sameTypes(events, EventWindow, EventScore, EventFeedback) {
		t.Fatalf("unexpected start events %v", eventTypes(events))
	}
	if len(events[0].Dates) != game.SeedSize || events[2].Message != game.MsgPrompt {
		t.Errorf("unexpected start payload %+v", events)
	}

	// 06-21 is followed by 24, 25, 26 and 27: three guesses fit.
	correct := 0
	for i := 0; i < 3; i++ {
		v, out, evs, err := m.Guess(view.ID, true)
		if err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
		if out.Correct {
			correct++
		}
		if v.Score != correct || v.Guesses != i+1 {
			t.Errorf("guess %d: score %d guesses %d, expected %d/%d", i, v.Score, v.Guesses, correct, i+1)
		}
		if v.CurrentDate != out.Revealed.Date {
			t.Errorf("guess %d: display date %s, revealed %s", i, v.CurrentDate, out.Revealed.Date)
		}
		if i < 2 && !sameTypes(evs, EventFeedback, EventScore, EventReveal) {
			t.Errorf("guess %d: unexpected events %v", i, eventTypes(evs))
		}
		if i == 2 {
			if !sameTypes(evs, EventFeedback, EventScore, EventReveal, EventFeedback, EventEnded) {
				t.Fatalf("last guess: unexpected events %v", eventTypes(evs))
			}
			if evs[4].Reason != game.EndExhausted || v.CanGuess || v.Phase != "exhausted" {
				t.Errorf("last guess: expected exhausted view, got %+v", v)
			}
		}
	}

	if _, _, _, err := m.Guess(view.ID, false); !errors.Is(err, game.ErrRoundNotActive) {
		t.Errorf("expected ErrRoundNotActive, got %v", err)
	}
	if _, evs, ended, err := m.End(view.ID); err != nil || ended || len(evs) != 0 {
		t.Errorf("End after exhaustion: ended=%v events=%v err=%v", ended, evs, err)
	}

	sum, err := m.Summary(view.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Guesses != 3 || sum.Correct != correct {
		t.Errorf("unexpected summary %+v", sum)
	}
	if got := testutil.ToFloat64(met.RoundsEnded.WithLabelValues("exhausted")); got != 1 {
		t.Errorf("expected one exhausted round, got %v", got)
	}
	if got := testutil.ToFloat64(met.RoundsStarted.WithLabelValues("mock")); got != 1 {
		t.Errorf("expected one started round, got %v", got)
	}
}

func TestManager_EndIsIdempotent(t *testing.T) {
	m, _ := newTestManager(0, &collector.MockFetcher{})
	view, _, err := m.Start(context.Background(), "chat-1", "MSFT")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if view.ID != "chat-1" {
		t.Errorf("expected caller key to be kept, got %q", view.ID)
	}

	v, evs, ended, err := m.End("chat-1")
	if err != nil || !ended {
		t.Fatalf("End: ended=%v err=%v", ended, err)
	}
	if !sameTypes(evs, EventFeedback, EventEnded) || evs[0].Message != game.MsgEnded || evs[1].Reason != game.EndUser {
		t.Errorf("unexpected end events %+v", evs)
	}
	if v.Phase != "ended" || v.CanGuess {
		t.Errorf("unexpected view after End %+v", v)
	}

	again, evs, ended, err := m.End("chat-1")
	if err != nil || ended || len(evs) != 0 {
		t.Errorf("second End: ended=%v events=%v err=%v", ended, evs, err)
	}
	if again.Score != v.Score || len(again.Points) != len(v.Points) {
		t.Errorf("second End changed the round: %+v vs %+v", again, v)
	}
	if _, _, _, err := m.Guess("chat-1", true); !errors.Is(err, game.ErrRoundNotActive) {
		t.Errorf("expected ErrRoundNotActive, got %v", err)
	}
}

func TestManager_StartErrors(t *testing.T) {
	old := model.DailySeries{}
	for i := 0; i < 20; i++ {
		day := testNow.AddDate(0, 0, -300-i)
		old[day.Format(model.DateLayout)] = decimal.NewFromInt(int64(10 + i))
	}

	tests := []struct {
		name    string
		fetcher *collector.MockFetcher
		symbol  string
		want    error
	}{
		{"empty symbol", &collector.MockFetcher{}, "  ", collector.ErrEmptySymbol},
		{"not found", &collector.MockFetcher{Err: collector.ErrNotFound}, "ZZZZ", collector.ErrNotFound},
		{"rate limited", &collector.MockFetcher{Err: collector.ErrRateLimited}, "IBM", collector.ErrRateLimited},
		{"stale data", &collector.MockFetcher{Series: old}, "IBM", game.ErrInsufficientData},
	}
	for _, tt := range tests {
		m, _ := newTestManager(0, tt.fetcher)
		if _, _, err := m.Start(context.Background(), "k", tt.symbol); !errors.Is(err, tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, err)
		}
		if m.Len() != 0 {
			t.Errorf("%s: failed start must not register a round", tt.name)
		}
	}
}

func TestManager_FailedStartDiscardsPreviousRound(t *testing.T) {
	f := &collector.MockFetcher{}
	m, _ := newTestManager(0, f)
	if _, _, err := m.Start(context.Background(), "k", "AAPL"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.Err = collector.ErrNotFound
	if _, _, err := m.Start(context.Background(), "k", "NOPE"); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := m.Get("k"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_UnknownKey(t *testing.T) {
	m, _ := newTestManager(0, &collector.MockFetcher{})
	if _, err := m.Get("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get: expected ErrSessionNotFound, got %v", err)
	}
	if _, _, _, err := m.Guess("missing", true); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Guess: expected ErrSessionNotFound, got %v", err)
	}
	if _, _, err := m.Subscribe("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Subscribe: expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_SubscribeAndSweep(t *testing.T) {
	m, met := newTestManager(0, &collector.MockFetcher{})
	now := testNow
	m.Now = func() time.Time { return now }

	a, _, err := m.Start(context.Background(), "a", "AAPL")
	if err != nil {
		t.Fatalf("Start a: %v", err)
	}
	if _, _, err := m.Start(context.Background(), "b", "MSFT"); err != nil {
		t.Fatalf("Start b: %v", err)
	}

	ch, cancel, err := m.Subscribe(a.ID)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()
	if _, _, _, err := m.Guess(a.ID, false); err != nil {
		t.Fatalf("Guess: %v", err)
	}
	first := <-ch
	if first.Type != EventFeedback || first.Seq != 4 {
		t.Errorf("expected feedback event #4, got %+v", first)
	}

	now = now.Add(20 * time.Minute)
	if _, _, _, err := m.Guess("b", true); err != nil {
		t.Fatalf("Guess b: %v", err)
	}
	now = now.Add(20 * time.Minute)
	if n := m.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("expected one expired round, got %d", n)
	}
	if _, err := m.Get("a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected a to be swept, got %v", err)
	}
	if _, err := m.Get("b"); err != nil {
		t.Errorf("expected b to survive, got %v", err)
	}

	for range ch {
	}
	if got := testutil.ToFloat64(met.ActiveSessions); got != 1 {
		t.Errorf("expected 1 active session, got %v", got)
	}
	if got := testutil.ToFloat64(met.RoundsEnded.WithLabelValues("expired")); got != 1 {
		t.Errorf("expected 1 expired round, got %v", got)
	}
}

// gatedFetcher blocks every fetch until release receives a value.
type gatedFetcher struct {
	series  model.DailySeries
	entered chan struct{}
	release chan struct{}
}

func (g *gatedFetcher) Name() string { return "gated" }

func (g *gatedFetcher) FetchDailySeries(ctx context.Context, _ string) (model.DailySeries, error) {
	g.entered <- struct{}{}
	select {
	case <-g.release:
		return g.series, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestManager_ConcurrentStartClosesReplacedRound(t *testing.T) {
	g := &gatedFetcher{
		series:  collector.GenerateMockSeries(testNow, 200, 100),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	sel := &game.Selector{Rand: pickRand(0), Now: func() time.Time { return testNow }}
	m := NewManager(collector.NewCollector(g), sel, nil)
	m.Now = func() time.Time { return testNow }

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, _, err := m.Start(context.Background(), "k", "AAPL")
			done <- err
		}()
		<-g.entered
	}

	g.release <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("first Start: %v", err)
	}
	ch, cancel, err := m.Subscribe("k")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	g.release <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("second Start: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("expected one live round, got %d", m.Len())
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("replaced round's subscription was never closed")
		}
	}
}
