package game

import (
	"errors"

	"github.com/shopspring/decimal"

	"NextDay/internal/calendar"
	"NextDay/internal/model"
)

var (
	// ErrInsufficientData means no trading day falls inside the start-date window.
	ErrInsufficientData = errors.New("not enough recent data in the required range")
	// ErrInsufficientHistory means fewer than SeedHistory trading days precede the start date.
	ErrInsufficientHistory = errors.New("insufficient prior days to seed the chart")
	// ErrRoundNotActive is returned by Step when CanStep is false.
	ErrRoundNotActive = errors.New("round is not active")
)

// SeedHistory is the number of trading days shown before the start date.
const SeedHistory = 7

// SeedSize is the length of the initial window: history plus the start date.
const SeedSize = SeedHistory + 1

// Phase is the lifecycle state of a round.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseExhausted
	PhaseEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhaseExhausted:
		return "exhausted"
	case PhaseEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// GameState is one round's position in the series. Values are replaced, never
// shared: every transition returns a new GameState.
type GameState struct {
	Symbol       string
	Calendar     *calendar.TradingCalendar
	Series       model.DailySeries
	Seed         []model.PricePoint
	CurrentIndex int // last revealed calendar index
	Score        int
	Phase        Phase
}

// Outcome reports a single guess.
type Outcome struct {
	GuessUp   bool
	WentUp    bool
	Correct   bool
	Score     int
	PrevDate  string
	PrevPrice decimal.Decimal
	Revealed  model.PricePoint
	Exhausted bool
}
