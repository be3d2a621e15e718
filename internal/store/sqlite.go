package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"NextDay/internal/model"
)

// SQLiteCache persists fetched series to a SQLite database.
type SQLiteCache struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
func NewSQLiteCache(dbPath string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &SQLiteCache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite cache opened: %s", dbPath)
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS series_meta (
			cache_key  TEXT PRIMARY KEY,
			fetched_at INTEGER NOT NULL,
			points     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_series_meta_fetched ON series_meta(fetched_at)`,

		`CREATE TABLE IF NOT EXISTS series_points (
			cache_key TEXT NOT NULL,
			date      TEXT NOT NULL,
			adj_close TEXT NOT NULL,
			PRIMARY KEY (cache_key, date)
		)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (*Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fetchedAt int64
	err := c.db.QueryRowContext(ctx, `SELECT fetched_at FROM series_meta WHERE cache_key = ?`, key).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query meta: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, `SELECT date, adj_close FROM series_points WHERE cache_key = ?`, key)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	series := make(model.DailySeries)
	for rows.Next() {
		var date, raw string
		if err := rows.Scan(&date, &raw); err != nil {
			return nil, fmt.Errorf("scan point: %w", err)
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse cached price %s/%s: %w", key, date, err)
		}
		series[date] = price
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, nil
	}
	return &Entry{Series: series, FetchedAt: time.Unix(fetchedAt, 0)}, nil
}

func (c *SQLiteCache) Put(ctx context.Context, key string, e *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM series_points WHERE cache_key = ?`, key); err != nil {
		return fmt.Errorf("clear points: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO series_points (cache_key, date, adj_close) VALUES (?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for date, price := range e.Series {
		if _, err := stmt.ExecContext(ctx, key, date, price.String()); err != nil {
			return fmt.Errorf("insert point %s: %w", date, err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO series_meta (cache_key, fetched_at, points) VALUES (?,?,?)
		ON CONFLICT(cache_key) DO UPDATE SET fetched_at = excluded.fetched_at, points = excluded.points`,
		key, e.FetchedAt.Unix(), len(e.Series),
	); err != nil {
		return fmt.Errorf("upsert meta: %w", err)
	}
	return tx.Commit()
}

// Purge removes entries fetched before olderThan and returns how many were dropped.
func (c *SQLiteCache) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	cutoff := olderThan.Unix()
	if _, err := tx.ExecContext(ctx, `DELETE FROM series_points WHERE cache_key IN
		(SELECT cache_key FROM series_meta WHERE fetched_at < ?)`, cutoff); err != nil {
		return 0, fmt.Errorf("purge points: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM series_meta WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge meta: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, tx.Commit()
}

func (c *SQLiteCache) Close() error {
	log.Println("[INFO] closing sqlite cache")
	return c.db.Close()
}
