package domain

import (
	"errors"
	"fmt"
)

// Validation window errors.
var (
	ErrWindowOrder = errors.New("test range must not precede train range")
	ErrWindowEmpty = errors.New("validation window ranges must be non-empty")
)

// ValidationWindow is a (train, test) pair of contiguous bar-index
// ranges over a price series. Ranges are half-open: [Start, End).
// The test range never precedes the train range, so no information
// from the test range can influence a parameter choice evaluated on it.
type ValidationWindow struct {
	ID         string // splitter-assigned identifier, e.g. "wf-1", "holdout"
	TrainStart int
	TrainEnd   int
	TestStart  int
	TestEnd    int
}

// Validate checks the no-look-ahead ordering invariant.
func (w *ValidationWindow) Validate() error {
	if w.TrainStart >= w.TrainEnd || w.TestStart >= w.TestEnd {
		return fmt.Errorf("window %s: %w", w.ID, ErrWindowEmpty)
	}
	if w.TestStart < w.TrainEnd {
		return fmt.Errorf("window %s: %w", w.ID, ErrWindowOrder)
	}
	return nil
}

// TrainLen returns the number of bars in the train range.
func (w *ValidationWindow) TrainLen() int {
	return w.TrainEnd - w.TrainStart
}

// TestLen returns the number of bars in the test range.
func (w *ValidationWindow) TestLen() int {
	return w.TestEnd - w.TestStart
}
