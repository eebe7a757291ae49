package config

import (
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, and applies SIGLAB_* environment overrides. An empty
// path skips the file and uses defaults plus environment only.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides overwrites config fields from well-known SIGLAB_*
// variables when set. DSNs are the main use: secrets stay out of the TOML.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Data.SignalsFile, "SIGLAB_SIGNALS_FILE")
	setStr(&cfg.Data.PriceCacheDir, "SIGLAB_PRICE_CACHE_DIR")

	setStr(&cfg.Storage.PostgresDSN, "SIGLAB_POSTGRES_DSN")
	setStr(&cfg.Storage.ClickHouseDSN, "SIGLAB_CLICKHOUSE_DSN")
	setBool(&cfg.Storage.RunMigrations, "SIGLAB_RUN_MIGRATIONS")

	setStr(&cfg.Strategy.Name, "SIGLAB_STRATEGY_NAME")
	setFloat64(&cfg.Strategy.InitialCapital, "SIGLAB_STRATEGY_INITIAL_CAPITAL")
	setStr(&cfg.Strategy.PositionSizeMode, "SIGLAB_STRATEGY_POSITION_SIZE_MODE")
	setFloat64(&cfg.Strategy.MaxPositionPct, "SIGLAB_STRATEGY_MAX_POSITION_PCT")
	setFloat64(&cfg.Strategy.FixedDollarAmount, "SIGLAB_STRATEGY_FIXED_DOLLAR_AMOUNT")
	setInt(&cfg.Strategy.MinScore, "SIGLAB_STRATEGY_MIN_SCORE")
	setInt(&cfg.Strategy.MaxScore, "SIGLAB_STRATEGY_MAX_SCORE")
	setInt(&cfg.Strategy.HoldingPeriodDays, "SIGLAB_STRATEGY_HOLDING_PERIOD_DAYS")
	setFloat64(&cfg.Strategy.StopLossPct, "SIGLAB_STRATEGY_STOP_LOSS_PCT")
	setFloat64(&cfg.Strategy.TrailingStopPct, "SIGLAB_STRATEGY_TRAILING_STOP_PCT")
	setFloat64(&cfg.Strategy.TakeProfitPct, "SIGLAB_STRATEGY_TAKE_PROFIT_PCT")
	setInt(&cfg.Strategy.MaxPositions, "SIGLAB_STRATEGY_MAX_POSITIONS")
	setStr(&cfg.Strategy.EntryWeekday, "SIGLAB_STRATEGY_ENTRY_WEEKDAY")

	setInt(&cfg.Robust.StartYear, "SIGLAB_ROBUSTNESS_START_YEAR")
	setInt(&cfg.Robust.EndYear, "SIGLAB_ROBUSTNESS_END_YEAR")
	setInt(&cfg.Robust.MinGapWeeks, "SIGLAB_ROBUSTNESS_MIN_GAP_WEEKS")
	setInt(&cfg.Robust.MaxGapWeeks, "SIGLAB_ROBUSTNESS_MAX_GAP_WEEKS")
	setInt64(&cfg.Robust.Seed, "SIGLAB_ROBUSTNESS_SEED")
	setInt(&cfg.Robust.Parallelism, "SIGLAB_ROBUSTNESS_PARALLELISM")
}

// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
