package config

import (
	"fmt"

	"stock-signal-lab/internal/domain"
)

// Presets returns the named strategy set used for side-by-side comparison
// runs: holding-period ladder, score-band slices, and the tax-optimal
// 13-month variants.
func Presets() []domain.StrategyConfig {
	base := domain.DefaultStrategyConfig()

	preset := func(name string, mutate func(*domain.StrategyConfig)) domain.StrategyConfig {
		cfg := base
		cfg.Name = name
		mutate(&cfg)
		return cfg
	}

	return []domain.StrategyConfig{
		preset("3M Hold (-25% Stop)", func(c *domain.StrategyConfig) {
			c.HoldingPeriodDays = 90
		}),
		preset("6M Hold (-25% Stop)", func(c *domain.StrategyConfig) {
			c.HoldingPeriodDays = 180
		}),
		preset("12M Hold (-25% Stop)", func(c *domain.StrategyConfig) {}),
		preset("13M Hold (Tax Optimal)", func(c *domain.StrategyConfig) {
			c.HoldingPeriodDays = 395
		}),
		preset("High Score (8+) 12M", func(c *domain.StrategyConfig) {
			c.MinScore = 8
			c.MaxPositionPct = 0.06
			c.MaxPositions = 25
		}),
		preset("Moderate (5-7) 12M", func(c *domain.StrategyConfig) {
			c.MaxScore = 7
		}),
		preset("Moderate (5-7) 13M Tax", func(c *domain.StrategyConfig) {
			c.MaxScore = 7
			c.HoldingPeriodDays = 395
		}),
		preset("Score 4-7 12M", func(c *domain.StrategyConfig) {
			c.MinScore = 4
			c.MaxScore = 7
		}),
		preset("Low Score (1-4) 12M", func(c *domain.StrategyConfig) {
			c.MinScore = 1
			c.MaxScore = 4
		}),
		preset("Score 6-7 12M", func(c *domain.StrategyConfig) {
			c.MinScore = 6
			c.MaxScore = 7
		}),
		preset("Score 5-6 12M", func(c *domain.StrategyConfig) {
			c.MaxScore = 6
		}),
	}
}

// PresetByName finds a preset by its exact name.
func PresetByName(name string) (domain.StrategyConfig, error) {
	for _, p := range Presets() {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.StrategyConfig{}, fmt.Errorf("unknown strategy preset %q", name)
}
