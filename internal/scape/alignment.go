package scape

import (
	"fmt"

	"bfoalign/internal/model"
)

// AlignmentScape scores sequences against a fixed reference strain.
type AlignmentScape struct {
	name      string
	reference model.Sequence
}

func NewAlignmentScape(name string, reference model.Sequence) (*AlignmentScape, error) {
	if len(reference) == 0 {
		return nil, ErrDegenerateReference
	}
	if name == "" {
		name = "alignment"
	}
	return &AlignmentScape{name: name, reference: reference.Clone()}, nil
}

func (s *AlignmentScape) Name() string {
	return s.name
}

func (s *AlignmentScape) Len() int {
	return len(s.reference)
}

// Reference returns a copy; the scape's own reference is never exposed.
func (s *AlignmentScape) Reference() model.Sequence {
	return s.reference.Clone()
}

func (s *AlignmentScape) Evaluate(seq model.Sequence) (float64, error) {
	return Score(seq, s.reference)
}

// EvaluateAll scores every member, stopping at the first failure.
func EvaluateAll(sc Scape, population model.Population) ([]float64, error) {
	scores := make([]float64, len(population))
	for i, seq := range population {
		score, err := sc.Evaluate(seq)
		if err != nil {
			return nil, fmt.Errorf("evaluate member %d: %w", i, err)
		}
		scores[i] = score
	}
	return scores, nil
}
