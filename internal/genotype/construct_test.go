package genotype

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"bfoalign/internal/model"
)

func TestGenerateShapeAndAlphabet(t *testing.T) {
	pop, err := Generate(rand.New(rand.NewSource(1)), 6, 40)
	require.NoError(t, err)
	require.Len(t, pop, 6)
	for i, seq := range pop {
		require.Len(t, seq, 40, "member %d", i)
		for j, b := range seq {
			require.True(t, model.IsBase(b), "member %d position %d has %q", i, j, b)
		}
	}
}

func TestGenerateRejectsNonPositiveArguments(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := Generate(rng, 0, 10)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Generate(rng, 2, 0)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Generate(rng, -2, -1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	a, err := Generate(rand.New(rand.NewSource(42)), 4, 25)
	require.NoError(t, err)
	b, err := Generate(rand.New(rand.NewSource(42)), 4, 25)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGenerateUsesEveryBase(t *testing.T) {
	pop, err := Generate(rand.New(rand.NewSource(7)), 1, 400)
	require.NoError(t, err)
	for i, count := range pop[0].Counts() {
		require.Positive(t, count, "base %q never drawn", model.Alphabet[i])
	}
}

func TestSequenceFromRangeMapsOffsets(t *testing.T) {
	// A single-value range always maps to the first base.
	seq, err := SequenceFromRange(rand.New(rand.NewSource(3)), 12, 5, 5)
	require.NoError(t, err)
	for _, b := range seq {
		require.Equal(t, model.Alphabet[0], b)
	}

	seq, err = SequenceFromRange(rand.New(rand.NewSource(3)), 300, -10, 10)
	require.NoError(t, err)
	require.Len(t, seq, 300)
	for i, count := range seq.Counts() {
		require.Positive(t, count, "base %q never drawn", model.Alphabet[i])
	}
}

func TestSequenceFromRangeValidation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	_, err := SequenceFromRange(rng, 4, 10, -10)
	require.ErrorIs(t, err, ErrInvalidArgument)

	_, err = SequenceFromRange(rng, 0, -10, 10)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRangeSpan(t *testing.T) {
	cases := []struct {
		name      string
		low, high int
		want      int
	}{
		{name: "single", low: 5, high: 5, want: 1},
		{name: "symmetric", low: -10, high: 10, want: 21},
		{name: "widest that fits", low: 0, high: math.MaxInt - 1, want: math.MaxInt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RangeSpan(tc.low, tc.high)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	for _, bad := range [][2]int{{1, 0}, {math.MinInt, math.MaxInt}, {-1, math.MaxInt}, {0, math.MaxInt}} {
		_, err := RangeSpan(bad[0], bad[1])
		require.ErrorIs(t, err, ErrInvalidArgument, "range %v", bad)
	}
}

func TestSequenceFromRangeRejectsOverflowingRange(t *testing.T) {
	_, err := SequenceFromRange(rand.New(rand.NewSource(1)), 4, math.MinInt, math.MaxInt)
	require.ErrorIs(t, err, ErrInvalidArgument)
}
