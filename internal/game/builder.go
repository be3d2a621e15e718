package game

import (
	"fmt"

	"NextDay/internal/calendar"
	"NextDay/internal/model"
)

// Build assembles the initial state of a round whose present is startDate.
func Build(cal *calendar.TradingCalendar, series model.DailySeries, startDate, symbol string) (GameState, error) {
	startIndex, err := cal.IndexOf(startDate)
	if err != nil {
		return GameState{}, fmt.Errorf("resolve start date: %w", err)
	}
	if startIndex < SeedHistory {
		return GameState{}, fmt.Errorf("%w: %s has %d prior trading days", ErrInsufficientHistory, startDate, startIndex)
	}

	seed := make([]model.PricePoint, 0, SeedSize)
	for i := startIndex - SeedHistory; i <= startIndex; i++ {
		d := cal.DateAt(i)
		p, ok := series.Price(d)
		if !ok {
			return GameState{}, fmt.Errorf("no price for %s", d)
		}
		seed = append(seed, model.PricePoint{Date: d, Price: p})
	}

	state := GameState{
		Symbol:       symbol,
		Calendar:     cal,
		Series:       series,
		Seed:         seed,
		CurrentIndex: startIndex,
		Score:        0,
		Phase:        PhaseActive,
	}
	if !hasNextMove(state) {
		state.Phase = PhaseExhausted
	}
	return state, nil
}
