package feed

import (
	"os"
	"path/filepath"
	"testing"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
)

func sig(ticker, entryDate string, score int) domain.Signal {
	return domain.Signal{
		Ticker:     ticker,
		SignalDate: dates.MustParse(entryDate),
		EntryDate:  dates.MustParse(entryDate),
		EntryPrice: 100,
		Score:      score,
	}
}

func TestFeed_SortedByEffectiveEntryDate(t *testing.T) {
	f := New([]domain.Signal{
		sig("NVDA", "2023-03-17", 9),
		sig("AAPL", "2023-01-06", 5),
		sig("MSFT", "2023-02-10", 6),
	})

	all := f.All()
	if len(all) != 3 {
		t.Fatalf("Expected 3 signals, got %d", len(all))
	}
	if all[0].Ticker != "AAPL" || all[2].Ticker != "NVDA" {
		t.Errorf("Signals not sorted: %s, %s, %s", all[0].Ticker, all[1].Ticker, all[2].Ticker)
	}
}

func TestFeed_DropsInvalidSignals(t *testing.T) {
	bad := domain.Signal{Ticker: "", SignalDate: dates.MustParse("2023-01-06"), EntryPrice: 100, Score: 5}
	f := New([]domain.Signal{bad, sig("AAPL", "2023-01-06", 5)})

	if f.Len() != 1 {
		t.Errorf("Expected invalid signal to be dropped, len=%d", f.Len())
	}
}

func TestFeed_FilterScore(t *testing.T) {
	f := New([]domain.Signal{
		sig("AAPL", "2023-01-06", 4),
		sig("MSFT", "2023-01-06", 6),
		sig("NVDA", "2023-01-06", 9),
	})

	got := f.FilterScore(5, 8)
	if len(got) != 1 || got[0].Ticker != "MSFT" {
		t.Errorf("Expected only MSFT in score band [5,8], got %+v", got)
	}
}

func TestFeed_FromDate(t *testing.T) {
	f := New([]domain.Signal{
		sig("AAPL", "2023-01-06", 5),
		sig("MSFT", "2023-02-10", 6),
	})

	got := f.FromDate(dates.MustParse("2023-02-10"))
	if len(got) != 1 || got[0].Ticker != "MSFT" {
		t.Errorf("Expected only MSFT on/after 2023-02-10, got %+v", got)
	}
}

func TestFeed_WeekWindow(t *testing.T) {
	f := New([]domain.Signal{
		sig("MON", "2023-03-13", 5), // Monday, in window
		sig("FRI", "2023-03-17", 5), // Friday itself, in window
		sig("SUN", "2023-03-12", 5), // previous Sunday, out
		sig("SAT", "2023-03-18", 5), // next Saturday, out
	})

	got := f.WeekWindow(dates.MustParse("2023-03-17"))
	if len(got) != 2 {
		t.Fatalf("Expected 2 signals in week window, got %d", len(got))
	}
	for _, s := range got {
		if s.Ticker == "SUN" || s.Ticker == "SAT" {
			t.Errorf("Signal %s should be outside the window", s.Ticker)
		}
	}
}

func TestFeed_EntryDateFallsBackToSignalDate(t *testing.T) {
	noEntry := domain.Signal{
		Ticker:     "AAPL",
		SignalDate: dates.MustParse("2023-03-15"),
		EntryPrice: 100,
		Score:      5,
	}
	f := New([]domain.Signal{noEntry})

	got := f.WeekWindow(dates.MustParse("2023-03-17"))
	if len(got) != 1 {
		t.Errorf("Signal without entry_date should match on signal_date, got %d", len(got))
	}
}

func TestFeed_DateBounds(t *testing.T) {
	f := New([]domain.Signal{
		sig("AAPL", "2023-01-06", 5),
		sig("NVDA", "2023-03-17", 9),
	})

	first, last, ok := f.DateBounds()
	if !ok {
		t.Fatal("Expected bounds for non-empty feed")
	}
	if !first.Equal(dates.MustParse("2023-01-06")) || !last.Equal(dates.MustParse("2023-03-17")) {
		t.Errorf("Wrong bounds: %s .. %s", dates.Format(first), dates.Format(last))
	}

	_, _, ok = New(nil).DateBounds()
	if ok {
		t.Error("Expected no bounds for empty feed")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.json")
	content := `[
		{"ticker": "AAPL", "signal_date": "2023-03-10", "entry_date": "2023-03-13", "entry_price": 150.25, "score": 7, "signal_types": "insider_buying"},
		{"ticker": "MSFT", "signal_date": "2023-02-10", "entry_price": 240.0, "score": 6}
	]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if f.Len() != 2 {
		t.Fatalf("Expected 2 signals, got %d", f.Len())
	}

	all := f.All()
	if all[0].Ticker != "MSFT" {
		t.Errorf("Expected MSFT first by entry date, got %s", all[0].Ticker)
	}
	if !all[1].EntryDate.Equal(dates.MustParse("2023-03-13")) {
		t.Errorf("Wrong entry date: %s", dates.Format(all[1].EntryDate))
	}
}

func TestLoadFile_RejectsBadRecord(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.json")
	content := `[{"ticker": "AAPL", "signal_date": "2023-03-10", "entry_price": 0, "score": 7}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if err == nil {
		t.Error("Expected error for signal without entry price")
	}
}
