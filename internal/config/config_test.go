package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Strategy.InitialCapital != 100_000 {
		t.Errorf("InitialCapital = %v, want 100000", cfg.Strategy.InitialCapital)
	}
	if cfg.Strategy.EntryWeekday != "friday" {
		t.Errorf("EntryWeekday = %q, want friday", cfg.Strategy.EntryWeekday)
	}
	if cfg.Robust.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Robust.Seed)
	}
}

func TestLoad_TOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lab.toml")
	content := `
[strategy]
name = "custom"
initial_capital = 50000.0
min_score = 6
stop_loss_pct = 0.60

[storage]
postgres_dsn = "postgres://localhost:5432/lab"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Strategy.Name != "custom" || cfg.Strategy.InitialCapital != 50_000 {
		t.Errorf("TOML values not applied: %+v", cfg.Strategy)
	}
	if cfg.Strategy.MinScore != 6 || cfg.Strategy.StopLossPct != 0.60 {
		t.Errorf("TOML values not applied: %+v", cfg.Strategy)
	}
	// Untouched fields keep defaults.
	if cfg.Strategy.HoldingPeriodDays != 365 {
		t.Errorf("HoldingPeriodDays = %d, want default 365", cfg.Strategy.HoldingPeriodDays)
	}
	if cfg.Storage.PostgresDSN != "postgres://localhost:5432/lab" {
		t.Errorf("PostgresDSN = %q", cfg.Storage.PostgresDSN)
	}
}

func TestLoad_EnvOverridesTOML(t *testing.T) {
	t.Setenv("SIGLAB_STRATEGY_MIN_SCORE", "8")
	t.Setenv("SIGLAB_POSTGRES_DSN", "postgres://env-host:5432/lab")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Strategy.MinScore != 8 {
		t.Errorf("MinScore = %d, want env override 8", cfg.Strategy.MinScore)
	}
	if cfg.Storage.PostgresDSN != "postgres://env-host:5432/lab" {
		t.Errorf("PostgresDSN = %q, want env override", cfg.Storage.PostgresDSN)
	}
}

func TestToDomain(t *testing.T) {
	cfg := Defaults()
	cfg.Strategy.EntryWeekday = "Monday"

	d, err := cfg.Strategy.ToDomain()
	if err != nil {
		t.Fatalf("ToDomain failed: %v", err)
	}
	if d.EntryWeekday != time.Monday {
		t.Errorf("EntryWeekday = %v, want Monday", d.EntryWeekday)
	}

	cfg.Strategy.EntryWeekday = "someday"
	if _, err := cfg.Strategy.ToDomain(); err == nil {
		t.Error("Expected error for unknown weekday")
	}

	cfg.Strategy.EntryWeekday = "friday"
	cfg.Strategy.InitialCapital = -1
	if _, err := cfg.Strategy.ToDomain(); err == nil {
		t.Error("Expected validation error for negative capital")
	}
}

func TestPresets(t *testing.T) {
	presets := Presets()
	if len(presets) != 11 {
		t.Fatalf("Expected 11 presets, got %d", len(presets))
	}

	seen := make(map[string]bool)
	for _, p := range presets {
		if seen[p.Name] {
			t.Errorf("Duplicate preset name %q", p.Name)
		}
		seen[p.Name] = true

		if err := p.Validate(); err != nil {
			t.Errorf("Preset %q does not validate: %v", p.Name, err)
		}
	}

	taxOptimal, err := PresetByName("13M Hold (Tax Optimal)")
	if err != nil {
		t.Fatalf("PresetByName failed: %v", err)
	}
	if taxOptimal.HoldingPeriodDays != 395 {
		t.Errorf("HoldingPeriodDays = %d, want 395", taxOptimal.HoldingPeriodDays)
	}

	if _, err := PresetByName("nope"); err == nil {
		t.Error("Expected error for unknown preset")
	}
}
