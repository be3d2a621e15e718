package stats

import (
	"errors"

	"github.com/shopspring/decimal"

	"NextDay/internal/game"
	"NextDay/internal/model"
)

// Summary describes a round for the end-of-round report.
type Summary struct {
	Symbol        string  `json:"symbol"`
	Guesses       int     `json:"guesses"`
	Correct       int     `json:"correct"`
	Accuracy      float64 `json:"accuracy"` // 0.0 ~ 1.0
	LongestStreak int     `json:"longest_streak"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	ChangePct     float64 `json:"change_pct"` // first to last visible point
	Rating        string  `json:"rating"`
	Phase         string  `json:"phase"`
}

// Summarize builds the report for r.
func Summarize(r *game.Round) Summary {
	st := r.State()
	history := r.History()
	visible := r.Visible()

	s := Summary{
		Symbol:        st.Symbol,
		Guesses:       len(history),
		Correct:       st.Score,
		LongestStreak: LongestStreak(history),
		Phase:         st.Phase.String(),
	}
	if s.Guesses > 0 {
		s.Accuracy = float64(s.Correct) / float64(s.Guesses)
	}
	if high, low, err := Range(visible); err == nil {
		s.High = high.InexactFloat64()
		s.Low = low.InexactFloat64()
	}
	if pct, err := ChangePct(visible); err == nil {
		s.ChangePct = pct
	}
	s.Rating = Rate(s.Guesses, s.Accuracy).Label
	return s
}

// LongestStreak returns the longest run of consecutive correct guesses.
func LongestStreak(history []game.Outcome) int {
	best, cur := 0, 0
	for _, o := range history {
		if o.Correct {
			cur++
			if cur > best {
				best = cur
			}
		} else {
			cur = 0
		}
	}
	return best
}

// Range returns the highest and lowest price among points.
func Range(points []model.PricePoint) (high, low decimal.Decimal, err error) {
	if len(points) == 0 {
		return decimal.Zero, decimal.Zero, errors.New("no points provided")
	}
	high, low = points[0].Price, points[0].Price
	for _, p := range points[1:] {
		if p.Price.GreaterThan(high) {
			high = p.Price
		}
		if p.Price.LessThan(low) {
			low = p.Price
		}
	}
	return high, low, nil
}

// ChangePct returns the percentage move from the first to the last point.
func ChangePct(points []model.PricePoint) (float64, error) {
	if len(points) < 2 {
		return 0, errors.New("need at least two points")
	}
	first := points[0].Price
	if first.IsZero() {
		return 0, errors.New("first price is zero")
	}
	last := points[len(points)-1].Price
	return last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).InexactFloat64(), nil
}
