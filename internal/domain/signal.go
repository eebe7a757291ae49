package domain

import (
	"errors"
	"time"
)

// Signal validation errors.
var (
	ErrSignalNoTicker     = errors.New("signal has no ticker")
	ErrSignalNoEntryPrice = errors.New("signal has no usable entry price")
	ErrSignalDateOrder    = errors.New("signal entry date must follow signal date")
)

// Signal is one scored entry candidate produced by the upstream scanner.
// The simulator consumes signals read-only; they never mutate.
type Signal struct {
	Ticker      string
	SignalDate  time.Time // Friday detection day
	EntryDate   time.Time // next tradable day; falls back to SignalDate upstream
	EntryPrice  float64   // price assumed at entry
	SignalPrice float64   // Friday close, for reference
	Score       int       // composite strength, higher is stronger
	SignalTypes string    // comma-joined detector names, e.g. "52w_high,volume_spike"
}

// Validate reports whether the signal can be traded at all.
// A zero EntryDate is tolerated upstream (fallback to SignalDate), so it is
// normalized here rather than rejected.
func (s *Signal) Validate() error {
	if s.Ticker == "" {
		return ErrSignalNoTicker
	}
	if s.EntryPrice <= 0 {
		return ErrSignalNoEntryPrice
	}
	if !s.EntryDate.IsZero() && !s.SignalDate.IsZero() && s.EntryDate.Before(s.SignalDate) {
		return ErrSignalDateOrder
	}
	return nil
}

// EffectiveEntryDate returns EntryDate, or SignalDate when the feed record
// carried no explicit entry date.
func (s *Signal) EffectiveEntryDate() time.Time {
	if s.EntryDate.IsZero() {
		return s.SignalDate
	}
	return s.EntryDate
}
