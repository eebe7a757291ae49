// Package config loads lab configuration from TOML files with SIGLAB_*
// environment overrides. Strategy settings convert into the domain config
// the simulation consumes; data and storage settings point the cmds at
// their inputs.
package config

import (
	"fmt"
	"strings"
	"time"

	"stock-signal-lab/internal/domain"
)

// Config is the full lab configuration.
type Config struct {
	Data     DataConfig     `toml:"data"`
	Storage  StorageConfig  `toml:"storage"`
	Strategy StrategyConfig `toml:"strategy"`
	Robust   RobustConfig   `toml:"robustness"`
}

// DataConfig locates the offline inputs.
type DataConfig struct {
	SignalsFile   string `toml:"signals_file"`
	PriceCacheDir string `toml:"price_cache_dir"`
}

// StorageConfig holds database DSNs. Empty DSNs mean in-memory stores.
type StorageConfig struct {
	PostgresDSN   string `toml:"postgres_dsn"`
	ClickHouseDSN string `toml:"clickhouse_dsn"`
	RunMigrations bool   `toml:"run_migrations"`
}

// StrategyConfig is the TOML-shaped strategy block. EntryWeekday is a
// lowercase day name; ToDomain resolves it.
type StrategyConfig struct {
	Name              string  `toml:"name"`
	InitialCapital    float64 `toml:"initial_capital"`
	PositionSizeMode  string  `toml:"position_size_mode"`
	MaxPositionPct    float64 `toml:"max_position_pct"`
	FixedDollarAmount float64 `toml:"fixed_dollar_amount"`
	MinScore          int     `toml:"min_score"`
	MaxScore          int     `toml:"max_score"`
	HoldingPeriodDays int     `toml:"holding_period_days"`
	StopLossPct       float64 `toml:"stop_loss_pct"`
	TrailingStopPct   float64 `toml:"trailing_stop_pct"`
	TakeProfitPct     float64 `toml:"take_profit_pct"`
	MaxPositions      int     `toml:"max_positions"`
	EntryWeekday      string  `toml:"entry_weekday"`
}

// RobustConfig shapes the Monte-Carlo harness.
type RobustConfig struct {
	StartYear   int   `toml:"start_year"`
	EndYear     int   `toml:"end_year"`
	MinGapWeeks int   `toml:"min_gap_weeks"`
	MaxGapWeeks int   `toml:"max_gap_weeks"`
	Seed        int64 `toml:"seed"`
	Parallelism int   `toml:"parallelism"`
}

// Defaults returns the built-in configuration, mirroring
// domain.DefaultStrategyConfig.
func Defaults() Config {
	d := domain.DefaultStrategyConfig()
	return Config{
		Data: DataConfig{
			SignalsFile:   "data/signals.json",
			PriceCacheDir: "data/cache",
		},
		Strategy: StrategyConfig{
			Name:              d.Name,
			InitialCapital:    d.InitialCapital,
			PositionSizeMode:  d.PositionSizeMode,
			MaxPositionPct:    d.MaxPositionPct,
			FixedDollarAmount: d.FixedDollarAmount,
			MinScore:          d.MinScore,
			MaxScore:          d.MaxScore,
			HoldingPeriodDays: d.HoldingPeriodDays,
			StopLossPct:       d.StopLossPct,
			TrailingStopPct:   d.TrailingStopPct,
			TakeProfitPct:     d.TakeProfitPct,
			MaxPositions:      d.MaxPositions,
			EntryWeekday:      "friday",
		},
		Robust: RobustConfig{
			StartYear:   2023,
			EndYear:     2025,
			MinGapWeeks: 6,
			MaxGapWeeks: 8,
			Seed:        42,
		},
	}
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ToDomain converts the TOML strategy block into the validated domain
// config the driver runs.
func (s *StrategyConfig) ToDomain() (domain.StrategyConfig, error) {
	weekday, ok := weekdays[strings.ToLower(s.EntryWeekday)]
	if !ok {
		return domain.StrategyConfig{}, fmt.Errorf("unknown entry weekday %q", s.EntryWeekday)
	}

	cfg := domain.StrategyConfig{
		Name:              s.Name,
		InitialCapital:    s.InitialCapital,
		PositionSizeMode:  s.PositionSizeMode,
		MaxPositionPct:    s.MaxPositionPct,
		FixedDollarAmount: s.FixedDollarAmount,
		MinScore:          s.MinScore,
		MaxScore:          s.MaxScore,
		HoldingPeriodDays: s.HoldingPeriodDays,
		StopLossPct:       s.StopLossPct,
		TrailingStopPct:   s.TrailingStopPct,
		TakeProfitPct:     s.TakeProfitPct,
		MaxPositions:      s.MaxPositions,
		EntryWeekday:      weekday,
	}
	if err := cfg.Validate(); err != nil {
		return domain.StrategyConfig{}, err
	}
	return cfg, nil
}
