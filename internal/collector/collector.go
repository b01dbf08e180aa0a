package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"BrownianScope/internal/barcache"
	"BrownianScope/internal/model"
)

// Collector fetches the historical window, going through the bar cache first.
type Collector struct {
	Fetcher      Fetcher
	Cache        barcache.Cache
	Symbol       string
	LookbackDays int
	MaxAge       time.Duration
	now          func() time.Time
	logger       zerolog.Logger
}

// NewCollector creates a new Collector. A nil cache disables caching.
func NewCollector(fetcher Fetcher, cache barcache.Cache, symbol string, lookbackDays int, maxAge time.Duration) *Collector {
	if cache == nil {
		cache = barcache.NewNoop()
	}
	return &Collector{
		Fetcher:      fetcher,
		Cache:        cache,
		Symbol:       symbol,
		LookbackDays: lookbackDays,
		MaxAge:       maxAge,
		now:          time.Now,
		logger:       log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
	}
}

// Collect returns the most recent LookbackDays bars as a HistoricalSeries.
// When the provider fails, bars left in the cache are served instead.
func (c *Collector) Collect(ctx context.Context) (model.HistoricalSeries, error) {
	cached, fetchedAt, err := c.Cache.Load(c.Symbol, c.LookbackDays)
	if err != nil {
		c.logger.Warn().Err(err).Msg("bar cache load failed")
		cached = nil
	}
	if len(cached) >= c.LookbackDays && c.now().Sub(fetchedAt) <= c.MaxAge {
		c.logger.Debug().Int("bars", len(cached)).Time("fetched_at", fetchedAt).Msg("using cached bars")
		return c.series(cached, fetchedAt), nil
	}

	bars, err := c.Fetcher.FetchDailyBars(ctx, c.Symbol, c.LookbackDays)
	if err != nil {
		if len(cached) > 0 {
			c.logger.Warn().Err(err).Int("bars", len(cached)).Time("fetched_at", fetchedAt).
				Msg("fetch failed, serving stale cached bars")
			return c.series(cached, fetchedAt), nil
		}
		return model.HistoricalSeries{}, fmt.Errorf("fetch daily bars: %w", err)
	}
	if len(bars) == 0 {
		return model.HistoricalSeries{}, fmt.Errorf("fetch daily bars: %s returned no data for %s", c.Fetcher.Name(), c.Symbol)
	}
	bars = trimLast(bars, c.LookbackDays)
	if len(bars) < c.LookbackDays {
		c.logger.Warn().Int("want", c.LookbackDays).Int("got", len(bars)).Msg("short history window")
	}

	if err := c.Cache.Store(c.Symbol, bars); err != nil {
		c.logger.Warn().Err(err).Msg("bar cache store failed")
	}
	return c.series(bars, c.now()), nil
}

func (c *Collector) series(bars []model.OHLCV, fetchedAt time.Time) model.HistoricalSeries {
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	return model.HistoricalSeries{Symbol: c.Symbol, Bars: out, FetchedAt: fetchedAt}
}
