package game

import (
	"github.com/shopspring/decimal"

	"NextDay/internal/model"
)

// Round drives one play-through: it owns the current GameState and pushes
// every change to its Listener. A Round is not safe for concurrent use.
type Round struct {
	state    GameState
	listener Listener
	visible  []model.PricePoint
	history  []Outcome
	reason   EndReason
	notified bool
}

// NewRound wraps a freshly built state. Call Start to emit the initial window.
func NewRound(state GameState, l Listener) *Round {
	if l == nil {
		l = NopListener{}
	}
	visible := make([]model.PricePoint, len(state.Seed))
	copy(visible, state.Seed)
	return &Round{state: state, listener: l, visible: visible}
}

// Start renders the seed window and reports the round as exhausted right away
// when the calendar leaves no room for a guess.
func (r *Round) Start() {
	dates := make([]string, len(r.visible))
	prices := make([]decimal.Decimal, len(r.visible))
	for i, p := range r.visible {
		dates[i] = p.Date
		prices[i] = p.Price
	}
	r.listener.OnInitialWindow(dates, prices)
	r.listener.OnScoreChanged(r.state.Score)
	if r.state.Phase == PhaseExhausted {
		r.finish(EndExhausted, MsgExhausted)
		return
	}
	r.listener.OnFeedback(MsgPrompt, false)
}

// Guess plays one step. It fails with ErrRoundNotActive once CanStep is false.
func (r *Round) Guess(up bool) (Outcome, error) {
	next, out, err := Step(r.state, up)
	if err != nil {
		return Outcome{}, err
	}
	r.state = next
	r.history = append(r.history, out)
	r.visible = append(r.visible, out.Revealed)

	msg := MsgIncorrect
	if out.Correct {
		msg = MsgCorrect
	}
	r.listener.OnFeedback(msg, out.Correct)
	r.listener.OnScoreChanged(out.Score)
	r.listener.OnReveal(out.Revealed.Date, out.Revealed.Price)

	if next.Phase == PhaseExhausted {
		r.finish(EndExhausted, MsgExhausted)
	}
	return out, nil
}

// End stops an active round. Repeated calls, or calls after exhaustion, do nothing.
func (r *Round) End() bool {
	next, changed := End(r.state)
	if !changed {
		return false
	}
	r.state = next
	r.finish(EndUser, MsgEnded)
	return true
}

func (r *Round) finish(reason EndReason, msg string) {
	if r.notified {
		return
	}
	r.notified = true
	r.reason = reason
	r.listener.OnFeedback(msg, false)
	r.listener.OnRoundEnded(reason)
}

// CanGuess reports whether the player may guess.
func (r *Round) CanGuess() bool { return CanStep(r.state) }

// State returns a copy of the current state.
func (r *Round) State() GameState { return r.state }

// Visible returns the points on the chart, seed window first.
func (r *Round) Visible() []model.PricePoint {
	out := make([]model.PricePoint, len(r.visible))
	copy(out, r.visible)
	return out
}

// DisplayDate is the date of the rightmost point on the chart.
func (r *Round) DisplayDate() string {
	return r.visible[len(r.visible)-1].Date
}

// History returns the outcomes of every guess so far.
func (r *Round) History() []Outcome {
	out := make([]Outcome, len(r.history))
	copy(out, r.history)
	return out
}

// EndReason returns why the round ended, or "" while it is active.
func (r *Round) EndReason() EndReason { return r.reason }
