package evo

import (
	"fmt"
	"math"
	"math/rand"

	"bfoalign/internal/genotype"
	"bfoalign/internal/model"
)

// Bounds is the integer range dispersal draws replacement bases from.
type Bounds struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

func DefaultBounds() Bounds {
	return Bounds{Low: -10, High: 10}
}

func (b Bounds) Validate() error {
	if b.Low > b.High {
		return fmt.Errorf("%w: dispersal bounds low %d exceeds high %d", ErrInvalidConfig, b.Low, b.High)
	}
	if _, err := genotype.RangeSpan(b.Low, b.High); err != nil {
		return fmt.Errorf("%w: dispersal bounds: %w", ErrInvalidConfig, err)
	}
	return nil
}

func validProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

// Disperse independently replaces each member, with the given probability,
// by a fresh full-length sequence drawn from bounds. It returns the replaced
// indices so the caller can re-score them.
func Disperse(rng *rand.Rand, population model.Population, probability float64, bounds Bounds) ([]int, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	if !validProbability(probability) {
		return nil, fmt.Errorf("%w: elimination probability must be in [0, 1], got %g", ErrInvalidConfig, probability)
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}

	var replaced []int
	for i := range population {
		if rng.Float64() >= probability {
			continue
		}
		seq, err := genotype.SequenceFromRange(rng, len(population[i]), bounds.Low, bounds.High)
		if err != nil {
			return nil, fmt.Errorf("disperse member %d: %w", i, err)
		}
		population[i] = seq
		replaced = append(replaced, i)
	}
	return replaced, nil
}
