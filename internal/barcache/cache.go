package barcache

import (
	"time"

	"BrownianScope/internal/model"
)

// Cache keeps fetched daily bars so repeated runs do not hit the provider.
// It only ever holds provider data, never forecast state.
type Cache interface {
	// Load returns up to days of the most recent bars for symbol, oldest first,
	// and the time they were last stored. A miss returns no bars and a zero time.
	Load(symbol string, days int) ([]model.OHLCV, time.Time, error)
	Store(symbol string, bars []model.OHLCV) error
	Close() error
}

// Noop is used when no cache path is configured.
type Noop struct{}

func NewNoop() *Noop { return &Noop{} }

func (Noop) Load(string, int) ([]model.OHLCV, time.Time, error) { return nil, time.Time{}, nil }
func (Noop) Store(string, []model.OHLCV) error                  { return nil }
func (Noop) Close() error                                       { return nil }
