package calendar

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"NextDay/internal/model"
)

var (
	// ErrNotFound is returned by IndexOf for a date that is not a trading day.
	ErrNotFound = errors.New("date not in trading calendar")
	// ErrInvalidDate is returned by New for a series key that is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid series date")
)

// TradingCalendar is the ascending list of trading dates of a DailySeries.
// It is read-only after construction.
type TradingCalendar struct {
	dates []string
	times []time.Time
}

// New derives the trading calendar from series.
func New(series model.DailySeries) (*TradingCalendar, error) {
	type entry struct {
		date string
		t    time.Time
	}
	entries := make([]entry, 0, len(series))
	for d := range series {
		t, err := time.Parse(model.DateLayout, d)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
		entries = append(entries, entry{date: d, t: t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].t.Before(entries[j].t) })

	c := &TradingCalendar{
		dates: make([]string, len(entries)),
		times: make([]time.Time, len(entries)),
	}
	for i, e := range entries {
		c.dates[i] = e.date
		c.times[i] = e.t
	}
	return c, nil
}

// Len returns the number of trading days.
func (c *TradingCalendar) Len() int { return len(c.dates) }

// DateAt returns the i-th trading date. It panics if i is out of range.
func (c *TradingCalendar) DateAt(i int) string { return c.dates[i] }

// TimeAt returns the i-th trading date as a UTC midnight time.
func (c *TradingCalendar) TimeAt(i int) time.Time { return c.times[i] }

// Dates returns a copy of all trading dates in ascending order.
func (c *TradingCalendar) Dates() []string {
	out := make([]string, len(c.dates))
	copy(out, c.dates)
	return out
}

// IndexOf returns the position of date in the calendar.
func (c *TradingCalendar) IndexOf(date string) (int, error) {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, date)
	}
	i := sort.Search(len(c.times), func(i int) bool { return !c.times[i].Before(t) })
	if i == len(c.times) || !c.times[i].Equal(t) {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, date)
	}
	return i, nil
}

// Between returns the trading dates d with min <= d <= max, ascending.
// Bounds are compared as UTC calendar dates.
func (c *TradingCalendar) Between(min, max time.Time) []string {
	lo := truncateDay(min)
	hi := truncateDay(max)
	var out []string
	for i, t := range c.times {
		if t.Before(lo) {
			continue
		}
		if t.After(hi) {
			break
		}
		out = append(out, c.dates[i])
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
