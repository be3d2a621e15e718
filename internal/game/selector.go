package game

import (
	"math/rand"
	"time"

	"NextDay/internal/calendar"
	"NextDay/internal/model"
)

const (
	DefaultMinDaysBack = 100
	DefaultMaxDaysBack = 7
)

// RandSource is the subset of *rand.Rand used for picking a start date.
type RandSource interface {
	Intn(n int) int
}

// Selector picks the trading day that acts as "today" for a round. The zero
// value uses the default window, the wall clock and the global rand source.
type Selector struct {
	Rand        RandSource
	Now         func() time.Time
	MinDaysBack int // oldest eligible date, in calendar days before today
	MaxDaysBack int // newest eligible date, in calendar days before today
}

// NewSelector returns a Selector with the default window seeded from seed.
func NewSelector(seed int64) *Selector {
	return &Selector{
		Rand:        rand.New(rand.NewSource(seed)),
		Now:         time.Now,
		MinDaysBack: DefaultMinDaysBack,
		MaxDaysBack: DefaultMaxDaysBack,
	}
}

// Window returns the inclusive [min, max] UTC dates eligible as a start date.
func (s *Selector) Window() (time.Time, time.Time) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	y, m, d := now().UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	minBack, maxBack := s.MinDaysBack, s.MaxDaysBack
	if minBack == 0 && maxBack == 0 {
		minBack, maxBack = DefaultMinDaysBack, DefaultMaxDaysBack
	}
	return today.AddDate(0, 0, -minBack), today.AddDate(0, 0, -maxBack)
}

// Select returns a random trading date within Window, preferring weekdays.
func (s *Selector) Select(cal *calendar.TradingCalendar) (string, error) {
	min, max := s.Window()
	inRange := cal.Between(min, max)
	if len(inRange) == 0 {
		return "", ErrInsufficientData
	}

	weekdays := make([]string, 0, len(inRange))
	for _, d := range inRange {
		t, err := time.Parse(model.DateLayout, d)
		if err != nil {
			continue
		}
		if wd := t.Weekday(); wd != time.Saturday && wd != time.Sunday {
			weekdays = append(weekdays, d)
		}
	}
	pickFrom := inRange
	if len(weekdays) > 0 {
		pickFrom = weekdays
	}
	if len(pickFrom) == 1 {
		return pickFrom[0], nil
	}
	return pickFrom[s.intn(len(pickFrom))], nil
}

func (s *Selector) intn(n int) int {
	if s.Rand == nil {
		return rand.Intn(n)
	}
	return s.Rand.Intn(n)
}
