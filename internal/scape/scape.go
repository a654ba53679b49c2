package scape

import (
	"errors"
	"fmt"

	"bfoalign/internal/model"
)

var (
	ErrDegenerateReference = errors.New("degenerate reference: zero length")
	ErrLengthMismatch      = errors.New("sequence length mismatch")
)

// Scape scores candidate sequences. Higher is more similar.
type Scape interface {
	Name() string
	Len() int
	Evaluate(seq model.Sequence) (float64, error)
}

// Score returns the percentage of positions where seq and reference hold the
// same base.
func Score(seq, reference model.Sequence) (float64, error) {
	if len(reference) == 0 {
		return 0, ErrDegenerateReference
	}
	if len(seq) != len(reference) {
		return 0, fmt.Errorf("%w: candidate=%d reference=%d", ErrLengthMismatch, len(seq), len(reference))
	}

	matches := 0
	for i := range reference {
		if seq[i] == reference[i] {
			matches++
		}
	}
	return 100 * float64(matches) / float64(len(reference)), nil
}
