package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeTradeID computes a deterministic trade_id using SHA256.
// Formula: SHA256(ticker|entry_date|exit_date|exit_reason)
// Returns hex-encoded hash (64 characters).
func ComputeTradeID(ticker string, entryDate, exitDate time.Time, exitReason string) string {
	data := fmt.Sprintf("%s|%s|%s|%s",
		ticker,
		entryDate.Format("2006-01-02"),
		exitDate.Format("2006-01-02"),
		exitReason,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
