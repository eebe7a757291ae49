package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(strategy_name|start_date|end_date)
// Returns hex-encoded hash (64 characters).
// Two runs of the same strategy over the same window collide on purpose:
// re-running an identical simulation must not create a second record.
func ComputeRunID(strategyName string, startDate, endDate time.Time) string {
	data := fmt.Sprintf("%s|%s|%s",
		strategyName,
		startDate.Format("2006-01-02"),
		endDate.Format("2006-01-02"),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
