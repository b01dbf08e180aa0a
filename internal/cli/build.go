package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/plot/vg"

	"BrownianScope/internal/barcache"
	"BrownianScope/internal/chart"
	"BrownianScope/internal/collector"
	"BrownianScope/internal/config"
	"BrownianScope/internal/forecast"
	"BrownianScope/internal/simulator"
)

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	switch cfg.DataSource.Provider {
	case "yahoo":
		f := collector.NewYahooFetcher(cfg.Proxy)
		if cfg.DataSource.BaseURL != "" {
			f.BaseURL = cfg.DataSource.BaseURL
		}
		return f, nil
	case "financego":
		return collector.NewFinanceGoFetcher(), nil
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy), nil
	case "csv":
		return collector.NewCSVFetcher(cfg.DataSource.CSVPath), nil
	case "mock":
		return &collector.MockFetcher{}, nil
	default:
		return nil, fmt.Errorf("unknown data provider %q", cfg.DataSource.Provider)
	}
}

// newCache opens the sqlite bar cache, falling back to no cache when it cannot be opened.
func newCache(cfg *config.Config) barcache.Cache {
	if cfg.Cache.SQLitePath == "" {
		return barcache.NewNoop()
	}
	c, err := barcache.NewSQLiteCache(cfg.Cache.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Cache.SQLitePath).Msg("init sqlite bar cache failed, using noop")
		return barcache.NewNoop()
	}
	return c
}

// newPipeline wires a forecast pipeline from cfg. The caller closes the returned cache.
func newPipeline(cfg *config.Config) (*forecast.Pipeline, barcache.Cache, error) {
	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("source", fetcher.Name()).Str("symbol", cfg.DataSource.Symbol).Msg("data source ready")

	cache := newCache(cfg)
	col := collector.NewCollector(fetcher, cache, cfg.DataSource.Symbol, cfg.DataSource.LookbackDays, cfg.Cache.MaxAge)

	p := forecast.NewPipeline(col, cfg.Simulation.PeriodsPerYear, simulator.Horizon{
		Steps: cfg.Simulation.HorizonSteps,
		Years: cfg.Simulation.HorizonYears,
	}, cfg.Simulation.Seeds)
	p.Parallel = cfg.Simulation.Parallel
	p.ChartOutput = cfg.Chart.Output
	p.Chart = chart.Options{
		Title:   cfg.Chart.Title,
		Columns: cfg.Chart.Columns,
		Width:   vg.Length(cfg.Chart.WidthIn) * vg.Inch,
		Height:  vg.Length(cfg.Chart.HeightIn) * vg.Inch,
		DPI:     cfg.Chart.DPI,
	}
	return p, cache, nil
}
