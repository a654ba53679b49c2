package evo

import (
	"fmt"
	"sort"
	"strings"

	"bfoalign/internal/model"
)

const (
	RankingLiteral    = "literal"
	RankingSimilarity = "similarity"
)

// Ranking orders scores so that the front of the order is treated as the
// healthiest part of the population.
type Ranking interface {
	Name() string
	Less(a, b float64) bool
}

// LiteralRanking sorts ascending and treats the lowest scores as healthiest.
// Similarity is higher-is-better, so reproduction under this ranking keeps
// the least similar half. It is the default.
type LiteralRanking struct{}

func (LiteralRanking) Name() string {
	return RankingLiteral
}

func (LiteralRanking) Less(a, b float64) bool {
	return a < b
}

// SimilarityRanking sorts descending so the most similar members survive.
type SimilarityRanking struct{}

func (SimilarityRanking) Name() string {
	return RankingSimilarity
}

func (SimilarityRanking) Less(a, b float64) bool {
	return a > b
}

func RankingFromName(name string) (Ranking, error) {
	switch normalizeRankingName(name) {
	case "", RankingLiteral:
		return LiteralRanking{}, nil
	case RankingSimilarity, "similar", "descending":
		return SimilarityRanking{}, nil
	case "ascending":
		return LiteralRanking{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported ranking: %s", ErrInvalidConfig, name)
	}
}

// normalizeRankingName lowercases name and drops separators and a trailing
// "ranking" word, so "Similarity_Ranking" and "similarity" agree.
func normalizeRankingName(name string) string {
	normalized := strings.TrimSpace(strings.ToLower(name))
	normalized = strings.NewReplacer("_", "-", " ", "-").Replace(normalized)
	normalized = strings.TrimSuffix(normalized, "ranking")
	return strings.Trim(normalized, "-")
}

// Reproduce ranks members, keeps the first half of the order and duplicates
// each kept member in place (a, a, b, b, ...). Scores follow their sequences.
func Reproduce(population model.Population, scores []float64, ranking Ranking) (model.Population, []float64, error) {
	n := len(population)
	if n == 0 || n%2 != 0 {
		return nil, nil, fmt.Errorf("%w: population size must be even and > 0, got %d", ErrInvalidConfig, n)
	}
	if len(scores) != n {
		return nil, nil, fmt.Errorf("%w: scores=%d population=%d", ErrInvalidConfig, len(scores), n)
	}
	if ranking == nil {
		ranking = LiteralRanking{}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ranking.Less(scores[order[i]], scores[order[j]])
	})

	nextPop := make(model.Population, 0, n)
	nextScores := make([]float64, 0, n)
	for _, idx := range order[:n/2] {
		nextPop = append(nextPop, population[idx].Clone(), population[idx].Clone())
		nextScores = append(nextScores, scores[idx], scores[idx])
	}
	return nextPop, nextScores, nil
}

// BestIndex returns the index the ranking places first; ties keep the lowest
// index.
func BestIndex(scores []float64, ranking Ranking) int {
	if len(scores) == 0 {
		return -1
	}
	if ranking == nil {
		ranking = LiteralRanking{}
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if ranking.Less(scores[i], scores[best]) {
			best = i
		}
	}
	return best
}
