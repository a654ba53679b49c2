package genotype

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"bfoalign/internal/model"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Generate builds the initial population: populationSize sequences of length
// bases, each base drawn uniformly from model.Alphabet.
func Generate(rng *rand.Rand, populationSize, length int) (model.Population, error) {
	if populationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0, got %d", ErrInvalidArgument, populationSize)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: sequence length must be > 0, got %d", ErrInvalidArgument, length)
	}
	rng = ensureRNG(rng)

	population := make(model.Population, populationSize)
	for i := range population {
		population[i] = RandomSequence(rng, length)
	}
	return population, nil
}

func RandomSequence(rng *rand.Rand, length int) model.Sequence {
	rng = ensureRNG(rng)
	seq := make(model.Sequence, length)
	for i := range seq {
		seq[i] = model.Alphabet[rng.Intn(len(model.Alphabet))]
	}
	return seq
}

// SequenceFromRange draws one integer per position uniformly from [low, high]
// and maps it onto the alphabet by its offset from low.
func SequenceFromRange(rng *rand.Rand, length, low, high int) (model.Sequence, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: sequence length must be > 0, got %d", ErrInvalidArgument, length)
	}
	span, err := RangeSpan(low, high)
	if err != nil {
		return nil, err
	}
	rng = ensureRNG(rng)

	seq := make(model.Sequence, length)
	for i := range seq {
		v := low + rng.Intn(span)
		seq[i] = model.Alphabet[(v-low)%len(model.Alphabet)]
	}
	return seq, nil
}

// RangeSpan returns the number of integers in [low, high]. It fails when
// low > high or the count does not fit in an int.
func RangeSpan(low, high int) (int, error) {
	if low > high {
		return 0, fmt.Errorf("%w: range low %d exceeds high %d", ErrInvalidArgument, low, high)
	}
	diff := uint(high) - uint(low)
	if diff >= uint(math.MaxInt) {
		return 0, fmt.Errorf("%w: range [%d, %d] is too wide", ErrInvalidArgument, low, high)
	}
	return int(diff) + 1, nil
}

func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
