package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"stock-signal-lab/internal/dates"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDir_LoadTickerEnvelopeShape(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "_historical-price-full_AAPL_2023.json", `{
		"symbol": "AAPL",
		"historical": [
			{"date": "2023-01-04", "open": 101, "high": 103, "low": 100, "close": 102, "volume": 1000},
			{"date": "2023-01-03", "open": 100, "high": 102, "low": 99, "close": 101, "volume": 900}
		]
	}`)

	bars, err := NewDir(dir).LoadTicker("AAPL")
	if err != nil {
		t.Fatalf("LoadTicker failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("Expected 2 bars, got %d", len(bars))
	}
	if !bars[0].Date.Equal(dates.MustParse("2023-01-03")) {
		t.Errorf("Bars not sorted ascending: first is %s", dates.Format(bars[0].Date))
	}
	if bars[0].Ticker != "AAPL" || bars[0].Close != 101 {
		t.Errorf("Bar fields wrong: %+v", bars[0])
	}
}

func TestDir_LoadTickerBareArrayShape(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "historical_MSFT_cache.json", `[
		{"date": "2023-01-03 00:00:00", "open": 240, "high": 245, "low": 238, "close": 242, "volume": 500}
	]`)

	bars, err := NewDir(dir).LoadTicker("MSFT")
	if err != nil {
		t.Fatalf("LoadTicker failed: %v", err)
	}
	if len(bars) != 1 || !bars[0].Date.Equal(dates.MustParse("2023-01-03")) {
		t.Errorf("Expected one bar on 2023-01-03, got %+v", bars)
	}
}

func TestDir_SelectFilePrefersLargest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "_historical-price-full_AAPL_a.json", `{"historical": [{"date": "2023-01-03", "close": 1}]}`)
	writeFile(t, dir, "_historical-price-full_AAPL_b.json", `{"historical": [
		{"date": "2023-01-03", "close": 1},
		{"date": "2023-01-04", "close": 2},
		{"date": "2023-01-05", "close": 3}
	]}`)

	file, err := NewDir(dir).SelectFile("AAPL")
	if err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if filepath.Base(file) != "_historical-price-full_AAPL_b.json" {
		t.Errorf("Expected largest file to win, got %s", file)
	}
}

func TestDir_SelectFilePatternPrecedence(t *testing.T) {
	dir := t.TempDir()
	// The fallback pattern has a much larger file, but the primary pattern
	// still wins.
	writeFile(t, dir, "_historical-price-full_AAPL_x.json", `{"historical": []}`)
	writeFile(t, dir, "historical_AAPL_y.json", `[
		{"date": "2023-01-03", "close": 1},
		{"date": "2023-01-04", "close": 2},
		{"date": "2023-01-05", "close": 3},
		{"date": "2023-01-06", "close": 4}
	]`)

	file, err := NewDir(dir).SelectFile("AAPL")
	if err != nil {
		t.Fatalf("SelectFile failed: %v", err)
	}
	if filepath.Base(file) != "_historical-price-full_AAPL_x.json" {
		t.Errorf("Primary pattern should take precedence, got %s", file)
	}
}

func TestDir_LoadTickerMissing(t *testing.T) {
	dir := t.TempDir()

	_, err := NewDir(dir).LoadTicker("ZZZZ")
	if !errors.Is(err, ErrNoCacheFile) {
		t.Errorf("Expected ErrNoCacheFile, got %v", err)
	}
}

func TestDir_LoadAllSkipsMissing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "historical_AAPL_1.json", `[{"date": "2023-01-03", "close": 101}]`)

	series, err := NewDir(dir).LoadAll([]string{"AAPL", "ZZZZ"})
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if len(series) != 1 {
		t.Fatalf("Expected 1 ticker loaded, got %d", len(series))
	}
	if _, ok := series["AAPL"]; !ok {
		t.Error("Expected AAPL in result")
	}
}

func TestDir_LoadAllPropagatesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "historical_AAPL_1.json", `{not json`)

	_, err := NewDir(dir).LoadAll([]string{"AAPL"})
	if err == nil {
		t.Error("Expected error for corrupt cache file")
	}
}
