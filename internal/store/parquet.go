package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"

	"NextDay/internal/model"
)

// SeriesRecord is the Parquet schema for one adjusted close.
type SeriesRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // UTC midnight, Unix ms
	AdjClose  float64 `parquet:"adj_close"`
}

// SeriesPath returns <dir>/<SYMBOL>.parquet.
func SeriesPath(dir, symbol string) string {
	return filepath.Join(dir, strings.ToUpper(symbol)+".parquet")
}

// WriteSeriesFile writes series to path in ascending date order.
func WriteSeriesFile(path, symbol string, series model.DailySeries) error {
	records := make([]SeriesRecord, 0, len(series))
	for date, price := range series {
		t, err := time.Parse(model.DateLayout, date)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", date, err)
		}
		records = append(records, SeriesRecord{
			Symbol:    symbol,
			Timestamp: t.UnixMilli(),
			AdjClose:  price.InexactFloat64(),
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp < records[j].Timestamp })

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, records)
}

// ReadSeriesFile reads a series written by WriteSeriesFile.
func ReadSeriesFile(path string) (model.DailySeries, error) {
	records, err := parquet.ReadFile[SeriesRecord](path)
	if err != nil {
		return nil, err
	}
	series := make(model.DailySeries, len(records))
	for _, r := range records {
		date := time.UnixMilli(r.Timestamp).UTC().Format(model.DateLayout)
		series[date] = decimal.NewFromFloat(r.AdjClose)
	}
	return series, nil
}
