package evo

import (
	"math/rand"

	"bfoalign/internal/model"
)

// Chemotaxis is the local search move: a uniform random reordering of the
// sequence's positions. The input is left untouched so the caller can compare
// before committing; the multiset of bases is preserved.
func Chemotaxis(rng *rand.Rand, seq model.Sequence) model.Sequence {
	out := seq.Clone()
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Accept keeps ties and improvements; only a strictly lower similarity is
// reverted.
func Accept(oldScore, newScore float64) bool {
	return newScore >= oldScore
}
