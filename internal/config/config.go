package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Providers lists the supported historical data sources.
var Providers = []string{"yahoo", "financego", "rest", "csv", "mock"}

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider     string `yaml:"provider"`
		BaseURL      string `yaml:"base_url"`
		APIKey       string `yaml:"api_key"`
		CSVPath      string `yaml:"csv_path"`
		Symbol       string `yaml:"symbol"`
		LookbackDays int    `yaml:"lookback_days"`
	} `yaml:"data_source"`
	Simulation struct {
		PeriodsPerYear int     `yaml:"periods_per_year"`
		HorizonSteps   int     `yaml:"horizon_steps"`
		HorizonYears   float64 `yaml:"horizon_years"`
		Seeds          []int64 `yaml:"seeds"`
		Parallel       bool    `yaml:"parallel"`
	} `yaml:"simulation"`
	Chart struct {
		Output   string  `yaml:"output"`
		Title    string  `yaml:"title"`
		Columns  int     `yaml:"columns"`
		WidthIn  float64 `yaml:"width_in"`
		HeightIn float64 `yaml:"height_in"`
		DPI      int     `yaml:"dpi"`
	} `yaml:"chart"`
	Cache struct {
		SQLitePath string        `yaml:"sqlite_path"`
		MaxAge     time.Duration `yaml:"max_age"`
	} `yaml:"cache"`
	Schedule struct {
		ForecastCron string `yaml:"forecast_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy    string `yaml:"proxy"`
	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file and an optional .env file, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("DATA_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATA_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOOKBACK_DAYS: %w", err)
		}
		cfg.DataSource.LookbackDays = n
	}
	if v := os.Getenv("HORIZON_STEPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HORIZON_STEPS: %w", err)
		}
		cfg.Simulation.HorizonSteps = n
	}
	if v := os.Getenv("PERIODS_PER_YEAR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PERIODS_PER_YEAR: %w", err)
		}
		cfg.Simulation.PeriodsPerYear = n
	}
	if v := os.Getenv("SEEDS"); v != "" {
		seeds, err := ParseSeeds(v)
		if err != nil {
			return fmt.Errorf("SEEDS: %w", err)
		}
		cfg.Simulation.Seeds = seeds
	}
	if v := os.Getenv("CHART_OUTPUT"); v != "" {
		cfg.Chart.Output = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("CRON_FORECAST"); v != "" {
		cfg.Schedule.ForecastCron = v
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "^GSPC"
	}
	if cfg.DataSource.LookbackDays == 0 {
		cfg.DataSource.LookbackDays = 504
	}
	if cfg.Simulation.PeriodsPerYear == 0 {
		cfg.Simulation.PeriodsPerYear = 252
	}
	if cfg.Simulation.HorizonSteps == 0 {
		cfg.Simulation.HorizonSteps = 504
	}
	if cfg.Simulation.HorizonYears == 0 {
		cfg.Simulation.HorizonYears = 1
	}
	if len(cfg.Simulation.Seeds) == 0 {
		cfg.Simulation.Seeds = []int64{5, 10, 15, 20}
	}
	if cfg.Chart.Output == "" {
		cfg.Chart.Output = "data/gbm_scenarios.png"
	}
	if cfg.Chart.Columns == 0 {
		cfg.Chart.Columns = 2
	}
	if cfg.Chart.WidthIn == 0 {
		cfg.Chart.WidthIn = 12
	}
	if cfg.Chart.HeightIn == 0 {
		cfg.Chart.HeightIn = 8
	}
	if cfg.Chart.DPI == 0 {
		cfg.Chart.DPI = 300
	}
	if cfg.Cache.MaxAge == 0 {
		cfg.Cache.MaxAge = 12 * time.Hour
	}
	if cfg.Schedule.ForecastCron == "" {
		cfg.Schedule.ForecastCron = "0 30 22 * * 1-5"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// Validate checks that the forecast can run with this configuration.
func (c *Config) Validate() error {
	if !knownProvider(c.DataSource.Provider) {
		return fmt.Errorf("data_source.provider %q is not one of %s", c.DataSource.Provider, strings.Join(Providers, ", "))
	}
	if c.DataSource.Provider == "rest" && c.DataSource.BaseURL == "" {
		return fmt.Errorf("data_source.base_url is required for the rest provider")
	}
	if c.DataSource.Provider == "csv" && c.DataSource.CSVPath == "" {
		return fmt.Errorf("data_source.csv_path is required for the csv provider")
	}
	if c.DataSource.LookbackDays < 2 {
		return fmt.Errorf("data_source.lookback_days must be at least 2")
	}
	if c.Simulation.PeriodsPerYear <= 0 {
		return fmt.Errorf("simulation.periods_per_year must be positive")
	}
	if c.Simulation.HorizonSteps <= 0 {
		return fmt.Errorf("simulation.horizon_steps must be positive")
	}
	if c.Simulation.HorizonYears <= 0 {
		return fmt.Errorf("simulation.horizon_years must be positive")
	}
	if len(c.Simulation.Seeds) == 0 {
		return fmt.Errorf("simulation.seeds must not be empty")
	}
	seen := make(map[int64]bool, len(c.Simulation.Seeds))
	for _, s := range c.Simulation.Seeds {
		if seen[s] {
			return fmt.Errorf("simulation.seeds contains %d twice", s)
		}
		seen[s] = true
	}
	if c.Chart.Columns <= 0 {
		return fmt.Errorf("chart.columns must be positive")
	}
	if c.Chart.WidthIn <= 0 || c.Chart.HeightIn <= 0 || c.Chart.DPI <= 0 {
		return fmt.Errorf("chart size and dpi must be positive")
	}
	return nil
}

// ValidateTelegram checks the fields needed to deliver reports.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
		return fmt.Errorf("telegram.chat_id must be numeric: %w", err)
	}
	return nil
}

// ParseSeeds parses a comma-separated list of integer seeds.
func ParseSeeds(s string) ([]int64, error) {
	var seeds []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse seed %q: %w", part, err)
		}
		seeds = append(seeds, n)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds in %q", s)
	}
	return seeds, nil
}

func knownProvider(p string) bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}
