package domain

import "time"

// PriceBar is one daily OHLCV record for a ticker. Bars are immutable once
// loaded; every valuation and trigger check in the simulator reads from them.
type PriceBar struct {
	Ticker string
	Date   time.Time // UTC midnight
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}
