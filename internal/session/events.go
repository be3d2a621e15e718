package session

import (
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"NextDay/internal/game"
)

// EventType names a render notification.
type EventType string

const (
	EventWindow   EventType = "window"
	EventReveal   EventType = "reveal"
	EventScore    EventType = "score"
	EventFeedback EventType = "feedback"
	EventEnded    EventType = "ended"
)

// Event is one listener notification, numbered in emission order.
type Event struct {
	Seq     int               `json:"seq"`
	Type    EventType         `json:"type"`
	Dates   []string          `json:"dates,omitempty"`
	Prices  []decimal.Decimal `json:"prices,omitempty"`
	Date    string            `json:"date,omitempty"`
	Price   *decimal.Decimal  `json:"price,omitempty"`
	Score   *int              `json:"score,omitempty"`
	Message string            `json:"message,omitempty"`
	Correct bool              `json:"correct,omitempty"`
	Reason  game.EndReason    `json:"reason,omitempty"`
}

const subscriberBuffer = 64

// eventLog implements game.Listener. Events are queued until the caller
// drains them and are also fanned out to live subscribers; a subscriber that
// falls behind loses events rather than blocking the round.
type eventLog struct {
	mu      sync.Mutex
	seq     int
	pending []Event
	subs    map[int]chan Event
	nextSub int
	closed  bool
}

func newEventLog() *eventLog {
	return &eventLog{subs: make(map[int]chan Event)}
}

func (l *eventLog) OnInitialWindow(dates []string, prices []decimal.Decimal) {
	l.emit(Event{Type: EventWindow, Dates: dates, Prices: prices})
}

func (l *eventLog) OnReveal(date string, price decimal.Decimal) {
	l.emit(Event{Type: EventReveal, Date: date, Price: &price})
}

func (l *eventLog) OnScoreChanged(score int) {
	l.emit(Event{Type: EventScore, Score: &score})
}

func (l *eventLog) OnFeedback(message string, correct bool) {
	l.emit(Event{Type: EventFeedback, Message: message, Correct: correct})
}

func (l *eventLog) OnRoundEnded(reason game.EndReason) {
	l.emit(Event{Type: EventEnded, Reason: reason})
}

func (l *eventLog) emit(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	e.Seq = l.seq
	l.pending = append(l.pending, e)
	for id, ch := range l.subs {
		select {
		case ch <- e:
		default:
			log.Printf("[WARN] subscriber %d is full, dropping event %d", id, e.Seq)
		}
	}
}

// drain returns and clears the queued events.
func (l *eventLog) drain() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// subscribe registers a live channel. The returned func unregisters it.
func (l *eventLog) subscribe() (<-chan Event, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan Event, subscriberBuffer)
	if l.closed {
		close(ch)
		return ch, func() {}
	}
	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch
	return ch, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

// close ends every subscription.
func (l *eventLog) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
}
