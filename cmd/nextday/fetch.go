package main

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"NextDay/internal/collector"
	"NextDay/internal/config"
	"NextDay/internal/store"
)

func newFetchCmd(cfg *config.Config) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "fetch SYMBOL",
		Short: "Download a daily series to a Parquet file for the file provider",
		Example: `  nextday fetch AAPL --out data/series
  nextday --provider file play AAPL`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), cfg, args[0], outDir)
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (defaults to data_source.data_dir)")
	return cmd
}

func runFetch(ctx context.Context, cfg *config.Config, symbol, outDir string) error {
	if outDir == "" {
		outDir = cfg.DataSource.DataDir
	}
	fetcher, err := buildFetcher(cfg)
	if err != nil {
		return err
	}
	ds, err := collector.NewCollector(fetcher).Collect(ctx, symbol)
	if err != nil {
		return err
	}
	path := store.SeriesPath(outDir, ds.Symbol)
	if err := store.WriteSeriesFile(path, ds.Symbol, ds.Series); err != nil {
		return err
	}
	log.Printf("[INFO] wrote %d trading days of %s to %s", len(ds.Series), ds.Symbol, path)
	return nil
}
