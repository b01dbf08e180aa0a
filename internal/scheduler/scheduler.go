package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"BrownianScope/internal/forecast"
	"BrownianScope/internal/model"
	"BrownianScope/internal/notifier"
)

// Telegram photo captions are capped at 1024 characters.
const maxCaption = 1024

// Forecaster runs forecast batches.
type Forecaster interface {
	Run(ctx context.Context) (*forecast.Result, error)
	Estimate(ctx context.Context) (model.HistoricalSeries, model.Parameters, error)
}

// Notifier delivers reports.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
	SendPhotoWithRetry(ctx context.Context, path, caption string, maxRetries int) error
}

// Scheduler runs forecast batches on a cron schedule and on demand.
type Scheduler struct {
	Cron       *cron.Cron
	Forecaster Forecaster
	Notifier   Notifier
	Ctx        context.Context
	// running guards against overlapping batches.
	running sync.Mutex
	now     func() time.Time
	logger  zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, f Forecaster, n Notifier) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Forecaster: f,
		Notifier:   n,
		Ctx:        ctx,
		now:        time.Now,
		logger:     log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the forecast task under a six-field cron expression.
func (s *Scheduler) Register(forecastCron string) error {
	if _, err := s.Cron.AddFunc(forecastCron, s.forecastTask); err != nil {
		return fmt.Errorf("register forecast task: %w", err)
	}
	s.logger.Info().Str("cron", forecastCron).Msg("forecast task registered")
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running batch.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunNow executes the forecast task immediately.
func (s *Scheduler) RunNow() {
	s.forecastTask()
}

func (s *Scheduler) forecastTask() {
	if !s.running.TryLock() {
		s.logger.Warn().Msg("forecast already running, skipping")
		return
	}
	defer s.running.Unlock()

	s.logger.Info().Msg("running forecast task")
	res, err := s.Forecaster.Run(s.Ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("forecast failed")
		s.trySend(fmt.Sprintf("❌ Forecast failed: %s", html.EscapeString(err.Error())))
		return
	}

	report := notifier.FormatForecastReport(res.Series, res.Params, res.Summaries, s.now())
	if res.ChartPath == "" {
		s.trySend(report)
		return
	}
	caption := report
	if len(caption) > maxCaption {
		caption = fmt.Sprintf("%s scenarios", res.Series.Symbol)
	}
	if err := s.Notifier.SendPhotoWithRetry(s.Ctx, res.ChartPath, caption, 3); err != nil {
		s.logger.Error().Err(err).Str("path", res.ChartPath).Msg("send chart")
		s.trySend(report)
		return
	}
	if caption != report {
		s.trySend(report)
	}
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch commandName(command) {
	case "/forecast":
		s.forecastTask()
		return ""
	case "/params":
		series, params, err := s.Forecaster.Estimate(s.Ctx)
		if err != nil {
			s.logger.Error().Err(err).Msg("estimate parameters")
			return fmt.Sprintf("❌ Estimation failed: %s", html.EscapeString(err.Error()))
		}
		return notifier.FormatParameters(series, params)
	default:
		return notifier.FormatHelp()
	}
}

// commandName strips arguments and a @botname suffix.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(name)
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification")
	}
}
