package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used as DailySeries keys.
const DateLayout = "2006-01-02"

// DailySeries maps a trading date (YYYY-MM-DD) to its adjusted close.
// Keys are unique but carry no ordering; see calendar.New.
type DailySeries map[string]decimal.Decimal

// Price returns the adjusted close for date.
func (s DailySeries) Price(date string) (decimal.Decimal, bool) {
	p, ok := s[date]
	return p, ok
}

// PricePoint is a single (date, adjusted close) pair shown on the chart.
type PricePoint struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

// Dataset is a fetched series for one symbol.
type Dataset struct {
	Symbol    string
	Series    DailySeries
	Source    string
	FetchedAt time.Time
}
