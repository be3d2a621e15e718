package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"NextDay/internal/collector"
	"NextDay/internal/config"
	"NextDay/internal/game"
	"NextDay/internal/store"
)

func testConfig(provider string) *config.Config {
	cfg := &config.Config{}
	cfg.DataSource.Provider = provider
	cfg.DataSource.APIKey = "k"
	cfg.DataSource.APISecret = "s"
	cfg.Cache.Backend = "none"
	return cfg
}

func TestBuildFetcher(t *testing.T) {
	tests := map[string]string{
		"alphavantage": "alphavantage",
		"yahoo":        "yahoo",
		"alpaca":       "alpaca",
		"file":         "file",
		"mock":         "mock",
	}
	for provider, name := range tests {
		f, err := buildFetcher(testConfig(provider))
		if err != nil {
			t.Errorf("%s: %v", provider, err)
			continue
		}
		if f.Name() != name {
			t.Errorf("%s: expected %q, got %q", provider, name, f.Name())
		}
	}
	if _, err := buildFetcher(testConfig("bloomberg")); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestBuildCollector_Cache(t *testing.T) {
	cfg := testConfig("yahoo")
	cfg.Cache.Backend = "sqlite"
	cfg.Cache.SQLitePath = filepath.Join(t.TempDir(), "c.db")
	col, cache, err := buildCollector(cfg, nil)
	if err != nil {
		t.Fatalf("buildCollector: %v", err)
	}
	defer cache.Close()
	if _, ok := col.Fetcher.(*collector.CachedFetcher); !ok {
		t.Errorf("expected a cached fetcher, got %T", col.Fetcher)
	}
	if _, ok := cache.(*store.SQLiteCache); !ok {
		t.Errorf("expected a sqlite cache, got %T", cache)
	}
}

func TestNewSelector_Window(t *testing.T) {
	cfg := testConfig("mock")
	cfg.Game.MinDaysBack = 60
	cfg.Game.MaxDaysBack = 3
	sel := newSelector(cfg, 9)
	if sel.MinDaysBack != 60 || sel.MaxDaysBack != 3 {
		t.Errorf("unexpected window %d..%d", sel.MinDaysBack, sel.MaxDaysBack)
	}
}

func TestConsoleListener(t *testing.T) {
	var buf bytes.Buffer
	l := &consoleListener{out: &buf}
	l.OnInitialWindow([]string{"2024-01-02"}, []decimal.Decimal{decimal.RequireFromString("10.5")})
	l.OnFeedback(game.MsgCorrect, true)
	l.OnRoundEnded(game.EndUser)

	out := buf.String()
	for _, want := range []string{"2024-01-02  10.50", "Correct! ✅", "Round over (user)."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunFetch(t *testing.T) {
	cfg := testConfig("mock")
	dir := t.TempDir()
	if err := runFetch(t.Context(), cfg, "abc", dir); err != nil {
		t.Fatalf("runFetch: %v", err)
	}
	series, err := store.ReadSeriesFile(store.SeriesPath(dir, "ABC"))
	if err != nil {
		t.Fatalf("ReadSeriesFile: %v", err)
	}
	if len(series) == 0 {
		t.Error("expected rows in the exported file")
	}
}
