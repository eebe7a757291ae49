// Package feed loads scored entry signals from their JSON export and
// answers the driver's filtered views: score band, start-date cut, and the
// weekly entry window.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"stock-signal-lab/internal/dates"
	"stock-signal-lab/internal/domain"
	"stock-signal-lab/internal/storage"
)

// signalRecord is the JSON export shape. Dates are YYYY-MM-DD strings and
// entry_date may be absent for older exports.
type signalRecord struct {
	Ticker      string  `json:"ticker"`
	SignalDate  string  `json:"signal_date"`
	EntryDate   string  `json:"entry_date,omitempty"`
	EntryPrice  float64 `json:"entry_price"`
	SignalPrice float64 `json:"signal_price,omitempty"`
	Score       int     `json:"score"`
	SignalTypes string  `json:"signal_types,omitempty"`
}

// Feed holds loaded signals sorted by effective entry date.
type Feed struct {
	signals []domain.Signal
}

// LoadFile reads signals from a JSON file. Records failing validation are
// rejected; the feed is all-or-nothing so a bad export is caught up front.
func LoadFile(path string) (*Feed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read signals file: %w", err)
	}

	var records []signalRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode signals file %s: %w", path, err)
	}

	signals := make([]domain.Signal, 0, len(records))
	for i, rec := range records {
		sig, err := recordToSignal(rec)
		if err != nil {
			return nil, fmt.Errorf("signal %d in %s: %w", i, path, err)
		}
		signals = append(signals, sig)
	}

	return New(signals), nil
}

// LoadStore reads all signals from a SignalStore.
func LoadStore(ctx context.Context, src storage.SignalStore) (*Feed, error) {
	stored, err := src.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load signals from store: %w", err)
	}
	signals := make([]domain.Signal, 0, len(stored))
	for _, s := range stored {
		signals = append(signals, *s)
	}
	return New(signals), nil
}

// New builds a feed from validated signals. Invalid signals are dropped.
func New(signals []domain.Signal) *Feed {
	kept := make([]domain.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Validate() == nil {
			kept = append(kept, sig)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		di, dj := kept[i].EffectiveEntryDate(), kept[j].EffectiveEntryDate()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return kept[i].Ticker < kept[j].Ticker
	})
	return &Feed{signals: kept}
}

func recordToSignal(rec signalRecord) (domain.Signal, error) {
	var sig domain.Signal
	sig.Ticker = rec.Ticker
	sig.EntryPrice = rec.EntryPrice
	sig.SignalPrice = rec.SignalPrice
	sig.Score = rec.Score
	sig.SignalTypes = rec.SignalTypes

	if rec.SignalDate != "" {
		d, err := dates.Parse(rec.SignalDate)
		if err != nil {
			return domain.Signal{}, err
		}
		sig.SignalDate = d
	}
	if rec.EntryDate != "" {
		d, err := dates.Parse(rec.EntryDate)
		if err != nil {
			return domain.Signal{}, err
		}
		sig.EntryDate = d
	}

	if err := sig.Validate(); err != nil {
		return domain.Signal{}, err
	}
	return sig, nil
}

// Len returns the number of signals in the feed.
func (f *Feed) Len() int {
	return len(f.signals)
}

// All returns every signal, sorted by effective entry date.
func (f *Feed) All() []domain.Signal {
	out := make([]domain.Signal, len(f.signals))
	copy(out, f.signals)
	return out
}

// Tickers returns the distinct tickers in the feed, sorted.
func (f *Feed) Tickers() []string {
	seen := make(map[string]struct{})
	for _, sig := range f.signals {
		seen[sig.Ticker] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FilterScore returns signals with minScore <= score <= maxScore.
func (f *Feed) FilterScore(minScore, maxScore int) []domain.Signal {
	var out []domain.Signal
	for _, sig := range f.signals {
		if sig.Score >= minScore && sig.Score <= maxScore {
			out = append(out, sig)
		}
	}
	return out
}

// FromDate returns signals whose effective entry date is on or after start.
func (f *Feed) FromDate(start time.Time) []domain.Signal {
	var out []domain.Signal
	for _, sig := range f.signals {
		if !sig.EffectiveEntryDate().Before(start) {
			out = append(out, sig)
		}
	}
	return out
}

// WeekWindow returns signals whose effective entry date falls inside the
// week ending on weekDate: [weekDate-4d, weekDate]. Entry days are Fridays,
// so the window spans Monday through Friday of that week.
func (f *Feed) WeekWindow(weekDate time.Time) []domain.Signal {
	weekStart := dates.AddDays(weekDate, -4)
	var out []domain.Signal
	for _, sig := range f.signals {
		d := sig.EffectiveEntryDate()
		if !d.Before(weekStart) && !d.After(weekDate) {
			out = append(out, sig)
		}
	}
	return out
}

// DateBounds returns the earliest and latest effective entry dates.
// ok is false for an empty feed.
func (f *Feed) DateBounds() (first, last time.Time, ok bool) {
	if len(f.signals) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return f.signals[0].EffectiveEntryDate(), f.signals[len(f.signals)-1].EffectiveEntryDate(), true
}
