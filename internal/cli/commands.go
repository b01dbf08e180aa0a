package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"BrownianScope/internal/calculator"
	"BrownianScope/internal/config"
	"BrownianScope/internal/notifier"
	"BrownianScope/internal/report"
	"BrownianScope/internal/scheduler"
)

// newRunCmd creates the run command
func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		seeds    string
		output   string
		parallel bool
		notify   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch history, simulate one path per seed and render the chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seeds") {
				if cfg.Simulation.Seeds, err = config.ParseSeeds(seeds); err != nil {
					return err
				}
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("config validation: %w", err)
				}
			}
			if cmd.Flags().Changed("output") {
				cfg.Chart.Output = output
			}
			if parallel {
				cfg.Simulation.Parallel = true
			}
			return runForecast(cmd, cfg, notify)
		},
	}
	cmd.Flags().StringVar(&seeds, "seeds", "", "Comma-separated seeds, e.g. 5,10,15,20")
	cmd.Flags().StringVar(&output, "output", "", "Chart PNG path (empty to skip rendering)")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "Generate paths concurrently")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send the chart and summary to Telegram")
	return cmd
}

func runForecast(cmd *cobra.Command, cfg *config.Config, notify bool) error {
	var tn *notifier.TelegramNotifier
	if notify {
		if err := cfg.ValidateTelegram(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		var err error
		if tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy); err != nil {
			return err
		}
	}

	p, cache, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	ctx := cmd.Context()
	res, err := p.Run(ctx)
	if err != nil {
		return err
	}
	report.Print(cmd.OutOrStdout(), res.Series, res.Params, res.Summaries, res.ChartPath)

	if tn == nil {
		return nil
	}
	text := notifier.FormatForecastReport(res.Series, res.Params, res.Summaries, time.Now())
	if res.ChartPath != "" {
		caption := fmt.Sprintf("%s scenarios", res.Series.Symbol)
		if err := tn.SendPhotoWithRetry(ctx, res.ChartPath, caption, 3); err != nil {
			return fmt.Errorf("send chart: %w", err)
		}
	}
	if err := tn.SendWithRetry(ctx, text, 3); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	return nil
}

// newEstimateCmd creates the estimate command
func newEstimateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Fetch history and print the estimated GBM parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			p, cache, err := newPipeline(cfg)
			if err != nil {
				return err
			}
			defer cache.Close()

			series, params, err := p.Estimate(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Parameters(series, params))
			fmt.Fprintln(out, report.Returns(calculator.DailyReturns(series.Closes())))
			return nil
		},
	}
}

// newServeCmd creates the serve command
func newServeCmd(opts *rootOptions) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run forecasts on the cron schedule and answer Telegram commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateTelegram(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			if os.Getenv("RUN_ON_START") == "true" {
				runOnStart = true
			}
			return serve(cmd.Context(), cfg, runOnStart)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Run one forecast immediately")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, runOnStart bool) error {
	log.Info().Str("version", Version).Msg("BrownianScope starting...")

	tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if err != nil {
		return err
	}
	p, cache, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cache.Close()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, p, tn)
	if err := sched.Register(cfg.Schedule.ForecastCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("Telegram polling started")

	if runOnStart {
		log.Info().Msg("run on start enabled, executing forecast now")
		go sched.RunNow()
	}

	log.Info().Msg("BrownianScope is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping...")
	return nil
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "BrownianScope %s\n", Version)
		},
	}
}
