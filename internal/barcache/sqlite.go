package barcache

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"BrownianScope/internal/model"
)

// SQLiteCache persists fetched bars to a SQLite database.
type SQLiteCache struct {
	db     *sql.DB
	mu     sync.Mutex
	now    func() time.Time
	logger zerolog.Logger
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

	c := &SQLiteCache{
		db:     db,
		now:    time.Now,
		logger: log.With().Str("component", "barcache").Logger(),
	}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	c.logger.Info().Str("path", dbPath).Msg("sqlite bar cache opened")
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_bars (
			symbol     TEXT    NOT NULL,
			timestamp  INTEGER NOT NULL,
			open       REAL,
			high       REAL,
			low        REAL,
			close      REAL,
			volume     REAL,
			fetched_at INTEGER NOT NULL,
			PRIMARY KEY (symbol, timestamp)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bars_fetched ON daily_bars(symbol, fetched_at)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (c *SQLiteCache) Load(symbol string, days int) ([]model.OHLCV, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fetched sql.NullInt64
	if err := c.db.QueryRow(`SELECT MAX(fetched_at) FROM daily_bars WHERE symbol = ?`, symbol).Scan(&fetched); err != nil {
		return nil, time.Time{}, fmt.Errorf("query fetched_at: %w", err)
	}
	if !fetched.Valid {
		return nil, time.Time{}, nil
	}

	rows, err := c.db.Query(`SELECT timestamp, open, high, low, close, volume FROM (
			SELECT timestamp, open, high, low, close, volume FROM daily_bars
			WHERE symbol = ? ORDER BY timestamp DESC LIMIT ?
		) ORDER BY timestamp ASC`, symbol, days)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.OHLCV
	for rows.Next() {
		var ts int64
		var b model.OHLCV
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = time.Unix(ts, 0)
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("iterate bars: %w", err)
	}
	return bars, time.Unix(fetched.Int64, 0), nil
}

func (c *SQLiteCache) Store(symbol string, bars []model.OHLCV) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO daily_bars
		(symbol, timestamp, open, high, low, close, volume, fetched_at)
		VALUES (?,?,?,?,?,?,?,?)
		ON CONFLICT(symbol, timestamp) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume, fetched_at = excluded.fetched_at`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := c.now().Unix()
	for _, b := range bars {
		if _, err := stmt.Exec(symbol, b.Time.Unix(), b.Open, b.High, b.Low, b.Close, b.Volume, now); err != nil {
			return fmt.Errorf("insert bar %s: %w", b.Time.Format("2006-01-02"), err)
		}
	}
	return tx.Commit()
}

func (c *SQLiteCache) Close() error {
	c.logger.Info().Msg("closing sqlite bar cache")
	return c.db.Close()
}
