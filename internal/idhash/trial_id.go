package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"alpha-search-lab/internal/domain"
)

// ComputeTrialID computes a deterministic trial_id using SHA256.
// Formula: SHA256(run_id|seq|binding_key)
// Returns hex-encoded hash (64 characters).
func ComputeTrialID(runID string, seq int64, binding domain.ParameterBinding) string {
	data := fmt.Sprintf("%s|%d|%s", runID, seq, binding.Key())

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeSeriesID computes a deterministic identifier for a price
// series slice. Formula: SHA256(symbol|interval|first_ts|last_ts|len)
func ComputeSeriesID(s *domain.PriceSeries) string {
	data := fmt.Sprintf("%s|%s|%d|%d|%d",
		s.Symbol,
		s.Interval,
		s.FirstTimestamp(),
		s.LastTimestamp(),
		s.Len(),
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
