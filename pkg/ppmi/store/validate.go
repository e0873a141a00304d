package store

import (
	"fmt"
	"math"

	"github.com/cognicore/ppmi/pkg/ppmi/internalerr"
)

// Validate checks that a snapshot describes a matrix Fit could have produced:
// a strictly increasing vocabulary, in-range coordinates, at most one entry
// per cell and only finite, strictly positive values.
func (s Snapshot) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("snapshot id is required: %w", internalerr.ErrInvalidInput)
	}
	for i := 1; i < len(s.Vocabulary); i++ {
		if !(s.Vocabulary[i-1] < s.Vocabulary[i]) {
			return fmt.Errorf("vocabulary not strictly increasing at %d (%q, %q): %w",
				i, s.Vocabulary[i-1], s.Vocabulary[i], internalerr.ErrInvalidInput)
		}
	}

	n := len(s.Vocabulary)
	seen := make(map[[2]int]struct{}, len(s.Entries))
	for _, e := range s.Entries {
		if e.Row < 0 || e.Row >= n || e.Col < 0 || e.Col >= n {
			return fmt.Errorf("entry (%d,%d) outside %dx%d matrix: %w", e.Row, e.Col, n, n, internalerr.ErrInvalidInput)
		}
		if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) || e.Value <= 0 {
			return fmt.Errorf("entry (%d,%d) = %v is not a finite positive value: %w", e.Row, e.Col, e.Value, internalerr.ErrInvalidInput)
		}
		key := [2]int{e.Row, e.Col}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate entry (%d,%d): %w", e.Row, e.Col, internalerr.ErrInvalidInput)
		}
		seen[key] = struct{}{}
	}
	return nil
}
