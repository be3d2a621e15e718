package game

import (
	"fmt"

	"NextDay/internal/model"
)

// hasNextMove reports whether the calendar holds both dates a step compares.
func hasNextMove(s GameState) bool {
	return s.CurrentIndex+2 < s.Calendar.Len()
}

// CanStep reports whether Step may be called on s.
func CanStep(s GameState) bool {
	return s.Phase == PhaseActive && hasNextMove(s)
}

// Step scores guessUp against the move from calendar[i+1] to calendar[i+2],
// reveals calendar[i+2] and advances the current index by one.
func Step(s GameState, guessUp bool) (GameState, Outcome, error) {
	if !CanStep(s) {
		return s, Outcome{}, fmt.Errorf("%w: phase %s at index %d of %d", ErrRoundNotActive, s.Phase, s.CurrentIndex, s.Calendar.Len())
	}
	prevIndex := s.CurrentIndex + 1
	nextIndex := s.CurrentIndex + 2
	prevDate := s.Calendar.DateAt(prevIndex)
	nextDate := s.Calendar.DateAt(nextIndex)
	prevPrice, ok := s.Series.Price(prevDate)
	if !ok {
		return s, Outcome{}, fmt.Errorf("no price for %s", prevDate)
	}
	nextPrice, ok := s.Series.Price(nextDate)
	if !ok {
		return s, Outcome{}, fmt.Errorf("no price for %s", nextDate)
	}

	wentUp := nextPrice.GreaterThan(prevPrice)
	correct := guessUp == wentUp

	next := s
	if correct {
		next.Score++
	}
	next.CurrentIndex = prevIndex
	if !hasNextMove(next) {
		next.Phase = PhaseExhausted
	}

	return next, Outcome{
		GuessUp:   guessUp,
		WentUp:    wentUp,
		Correct:   correct,
		Score:     next.Score,
		PrevDate:  prevDate,
		PrevPrice: prevPrice,
		Revealed:  model.PricePoint{Date: nextDate, Price: nextPrice},
		Exhausted: next.Phase == PhaseExhausted,
	}, nil
}

// End finishes an active round at the user's request. It reports false and
// leaves s untouched when the round is already over.
func End(s GameState) (GameState, bool) {
	if s.Phase != PhaseActive {
		return s, false
	}
	s.Phase = PhaseEnded
	return s, true
}
