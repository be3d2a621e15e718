package collector

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"NextDay/internal/model"
	"NextDay/internal/store"
)

// FileFetcher serves series from Parquet files written by `nextday fetch`.
type FileFetcher struct {
	Dir string
}

func NewFileFetcher(dir string) *FileFetcher { return &FileFetcher{Dir: dir} }

func (f *FileFetcher) Name() string { return "file" }

func (f *FileFetcher) FetchDailySeries(_ context.Context, symbol string) (model.DailySeries, error) {
	path := store.SeriesPath(f.Dir, symbol)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no file %s", ErrNotFound, path)
	}
	series, err := store.ReadSeriesFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMalformedResponse, path, err)
	}
	return series, nil
}
