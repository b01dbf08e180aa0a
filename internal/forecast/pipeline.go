package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"BrownianScope/internal/calculator"
	"BrownianScope/internal/chart"
	"BrownianScope/internal/model"
	"BrownianScope/internal/scenario"
	"BrownianScope/internal/simulator"
)

// SeriesSource provides the historical window a forecast starts from.
type SeriesSource interface {
	Collect(ctx context.Context) (model.HistoricalSeries, error)
}

// Pipeline runs one forecast batch: collect, estimate, simulate, summarize, render.
type Pipeline struct {
	Source         SeriesSource
	PeriodsPerYear int
	Horizon        simulator.Horizon
	Seeds          []int64
	Parallel       bool
	// ChartOutput is the PNG path. Empty skips rendering.
	ChartOutput string
	Chart       chart.Options
	logger      zerolog.Logger
}

// Result is everything one batch produced.
type Result struct {
	Series    model.HistoricalSeries
	Params    model.Parameters
	Paths     []model.ForecastPath
	Summaries []model.ScenarioSummary
	ChartPath string
	Elapsed   time.Duration
}

// NewPipeline creates a Pipeline for the given source.
func NewPipeline(src SeriesSource, periodsPerYear int, horizon simulator.Horizon, seeds []int64) *Pipeline {
	return &Pipeline{
		Source:         src,
		PeriodsPerYear: periodsPerYear,
		Horizon:        horizon,
		Seeds:          seeds,
		Chart:          chart.DefaultOptions(),
		logger:         log.With().Str("component", "forecast").Logger(),
	}
}

// Estimate collects the series and derives the GBM parameters only.
func (p *Pipeline) Estimate(ctx context.Context) (model.HistoricalSeries, model.Parameters, error) {
	series, err := p.Source.Collect(ctx)
	if err != nil {
		return model.HistoricalSeries{}, model.Parameters{}, fmt.Errorf("collect: %w", err)
	}
	params, err := calculator.Estimate(series, p.PeriodsPerYear)
	if err != nil {
		return series, model.Parameters{}, fmt.Errorf("estimate %s: %w", series.Symbol, err)
	}
	return series, params, nil
}

// Run executes the full batch.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	series, params, err := p.Estimate(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info().
		Str("symbol", series.Symbol).
		Int("bars", series.Len()).
		Float64("s0", params.InitialPrice).
		Float64("mu", params.Drift).
		Float64("sigma", params.Volatility).
		Msg("parameters estimated")

	runner := simulator.Runner{
		Horizon:        p.Horizon,
		LookbackOffset: series.Len(),
		Parallel:       p.Parallel,
	}
	paths, err := runner.Run(params, p.Seeds)
	if err != nil {
		return nil, fmt.Errorf("simulate: %w", err)
	}

	res := &Result{
		Series:    series,
		Params:    params,
		Paths:     paths,
		Summaries: scenario.SummarizeAll(paths, params),
	}

	if p.ChartOutput != "" {
		opts := p.Chart
		if opts.Title == "" {
			opts.Title = chart.DefaultTitle(len(paths), series.Symbol, p.Horizon.Steps, p.PeriodsPerYear)
		}
		if err := chart.RenderFile(p.ChartOutput, series, paths, opts); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		res.ChartPath = p.ChartOutput
		p.logger.Info().Str("path", p.ChartOutput).Msg("chart written")
	}

	res.Elapsed = time.Since(start)
	p.logger.Debug().Dur("elapsed", res.Elapsed).Int("paths", len(paths)).Msg("forecast batch done")
	return res, nil
}
