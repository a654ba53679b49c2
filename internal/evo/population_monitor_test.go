package evo

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"bfoalign/internal/genotype"
	"bfoalign/internal/model"
	"bfoalign/internal/scape"
)

func newTestScape(t *testing.T, reference string) *scape.AlignmentScape {
	t.Helper()
	ref, err := model.ParseSequence(reference)
	require.NoError(t, err)
	sc, err := scape.NewAlignmentScape("test", ref)
	require.NoError(t, err)
	return sc
}

func baseConfig(sc scape.Scape) MonitorConfig {
	return MonitorConfig{
		Scape:                  sc,
		PopulationSize:         4,
		Cycles:                 100,
		MaxCycles:              1,
		Steps:                  10,
		EliminationProbability: 0.25,
		DispersalBounds:        DefaultBounds(),
		Seed:                   1,
	}
}

func TestNewPopulationMonitorRejectsInvalidConfig(t *testing.T) {
	sc := newTestScape(t, "ACGTACGT")
	cases := map[string]func(*MonitorConfig){
		"missing scape":        func(c *MonitorConfig) { c.Scape = nil },
		"zero population":      func(c *MonitorConfig) { c.PopulationSize = 0 },
		"odd population":       func(c *MonitorConfig) { c.PopulationSize = 3 },
		"zero cycles":          func(c *MonitorConfig) { c.Cycles = 0 },
		"negative max cycles":  func(c *MonitorConfig) { c.MaxCycles = -1 },
		"negative steps":       func(c *MonitorConfig) { c.Steps = -1 },
		"probability too high": func(c *MonitorConfig) { c.EliminationProbability = 1.01 },
		"probability negative": func(c *MonitorConfig) { c.EliminationProbability = -0.5 },
		"probability NaN":      func(c *MonitorConfig) { c.EliminationProbability = math.NaN() },
		"inverted bounds":      func(c *MonitorConfig) { c.DispersalBounds = Bounds{Low: 1, High: 0} },
		"overflowing bounds":   func(c *MonitorConfig) { c.DispersalBounds = Bounds{Low: math.MinInt, High: math.MaxInt} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig(sc)
			mutate(&cfg)
			_, err := NewPopulationMonitor(cfg)
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestEffectiveCyclesHonorsCap(t *testing.T) {
	sc := newTestScape(t, "ACGT")

	cfg := baseConfig(sc)
	m, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)
	require.Equal(t, 1, m.EffectiveCycles())

	cfg.MaxCycles = 0
	m, err = NewPopulationMonitor(cfg)
	require.NoError(t, err)
	require.Equal(t, 100, m.EffectiveCycles())

	cfg.Cycles = 3
	cfg.MaxCycles = 7
	m, err = NewPopulationMonitor(cfg)
	require.NoError(t, err)
	require.Equal(t, 3, m.EffectiveCycles())
}

// Reference "ACGT" x2, two members, one cycle, no chemotaxis.
func TestRunDegenerateHalfPopulation(t *testing.T) {
	sc := newTestScape(t, "ACGTACGT")
	cfg := baseConfig(sc)
	cfg.PopulationSize = 2
	cfg.Cycles = 1
	cfg.Steps = 0
	cfg.EliminationProbability = 0

	m, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)
	initial, err := genotype.Generate(m.Rand(), 2, sc.Len())
	require.NoError(t, err)

	result, err := m.Run(context.Background(), initial)
	require.NoError(t, err)
	require.Len(t, result.FinalPopulation, 2)
	require.Len(t, result.FinalScores, 2)
	require.Equal(t, result.FinalPopulation[0], result.FinalPopulation[1])
	require.Equal(t, result.FinalScores[0], result.FinalScores[1])
	require.Len(t, result.Cycles, 1)
	require.Equal(t, 2, result.Evaluations)

	for i, seq := range result.FinalPopulation {
		score, err := sc.Evaluate(seq)
		require.NoError(t, err)
		require.Equal(t, score, result.FinalScores[i])
	}
}

func TestRunPerfectPopulationReportsHundred(t *testing.T) {
	const reference = "ACGTTGCAACGGTTCA"
	sc := newTestScape(t, reference)

	for _, probability := range []float64{0, 0.5, 1} {
		cfg := baseConfig(sc)
		cfg.EliminationProbability = probability
		cfg.MaxCycles = 0
		cfg.Cycles = 3
		m, err := NewPopulationMonitor(cfg)
		require.NoError(t, err)

		initial := make(model.Population, cfg.PopulationSize)
		for i := range initial {
			initial[i] = sc.Reference()
		}
		result, err := m.Run(context.Background(), initial)
		require.NoError(t, err)
		require.Equal(t, 100.0, result.Best.Score, "probability %v", probability)
		require.Equal(t, reference, result.Best.Sequence.String())
	}
}

func TestRunPerfectPopulationSimilarityFinalBestStaysOptimal(t *testing.T) {
	sc := newTestScape(t, "ACGTTGCAACGGTTCA")
	cfg := baseConfig(sc)
	cfg.Ranking = SimilarityRanking{}
	cfg.EliminationProbability = 0
	cfg.MaxCycles = 0
	cfg.Cycles = 4

	m, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)
	initial := make(model.Population, cfg.PopulationSize)
	for i := range initial {
		initial[i] = sc.Reference()
	}
	result, err := m.Run(context.Background(), initial)
	require.NoError(t, err)
	require.Equal(t, 100.0, result.FinalBest.Score)
	for _, score := range result.FinalScores {
		require.Equal(t, 100.0, score)
	}
}

func TestRunKeepsScoresAlignedAndSizeConstant(t *testing.T) {
	sc := newTestScape(t, "ACGTACGTTTGACCAGTACGATCAGGT")
	cfg := baseConfig(sc)
	cfg.PopulationSize = 6
	cfg.MaxCycles = 0
	cfg.Cycles = 5
	cfg.EliminationProbability = 0.5

	var reports []CycleReport
	cfg.Observer = func(r CycleReport) {
		reports = append(reports, r)
	}
	m, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)
	initial, err := genotype.Generate(m.Rand(), cfg.PopulationSize, sc.Len())
	require.NoError(t, err)

	result, err := m.Run(context.Background(), initial)
	require.NoError(t, err)
	require.Len(t, reports, 5)
	require.Len(t, result.Cycles, 5)

	for _, report := range reports {
		require.Len(t, report.Population, cfg.PopulationSize)
		require.Len(t, report.Scores, cfg.PopulationSize)
		require.Len(t, report.StartScores, cfg.PopulationSize)
		for i, seq := range report.Population {
			score, err := sc.Evaluate(seq)
			require.NoError(t, err)
			require.Equal(t, score, report.Scores[i], "cycle %d member %d", report.Cycle, i)
		}
		d := report.Diagnostics
		require.Equal(t, cfg.Steps*cfg.PopulationSize, d.Accepted+d.Reverted)
	}

	wantEvaluations := 0
	for _, d := range result.Cycles {
		wantEvaluations += cfg.PopulationSize + cfg.Steps*cfg.PopulationSize + d.Dispersed
	}
	require.Equal(t, wantEvaluations, result.Evaluations)
	require.Equal(t, result.Evaluations, result.Cycles[len(result.Cycles)-1].Evaluations)
}

func TestRunChemotaxisNeverRegressesWithoutDispersal(t *testing.T) {
	sc := newTestScape(t, "ACGTACGTTTGACCAGTACGATCAGGTAACG")
	cfg := baseConfig(sc)
	cfg.Ranking = SimilarityRanking{}
	cfg.EliminationProbability = 0
	cfg.MaxCycles = 0
	cfg.Cycles = 4
	cfg.PopulationSize = 8

	cfg.Observer = func(r CycleReport) {
		minStart := r.StartScores[0]
		for _, s := range r.StartScores {
			minStart = min(minStart, s)
		}
		require.GreaterOrEqual(t, r.Diagnostics.MinScore, minStart, "cycle %d", r.Cycle)
	}
	m, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)
	initial, err := genotype.Generate(m.Rand(), cfg.PopulationSize, sc.Len())
	require.NoError(t, err)

	result, err := m.Run(context.Background(), initial)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.Best.Score, result.FinalBest.Score)
}

func TestRunLiteralFinalBestIsSmallestScore(t *testing.T) {
	sc := newTestScape(t, "ACGTACGTTTGACCAG")
	cfg := baseConfig(sc)
	m, err := NewPopulationMonitor(cfg)
	require.NoError(t, err)
	initial, err := genotype.Generate(m.Rand(), cfg.PopulationSize, sc.Len())
	require.NoError(t, err)

	result, err := m.Run(context.Background(), initial)
	require.NoError(t, err)
	for _, s := range result.FinalScores {
		require.LessOrEqual(t, result.FinalBest.Score, s)
	}
	require.Equal(t, result.FinalPopulation[result.FinalBest.Index], result.FinalBest.Sequence)
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	sc := newTestScape(t, "ACGTACGTTTGACCAGTACG")
	run := func() RunResult {
		cfg := baseConfig(sc)
		cfg.MaxCycles = 0
		cfg.Cycles = 3
		cfg.Seed = 99
		m, err := NewPopulationMonitor(cfg)
		require.NoError(t, err)
		initial, err := genotype.Generate(m.Rand(), cfg.PopulationSize, sc.Len())
		require.NoError(t, err)
		result, err := m.Run(context.Background(), initial)
		require.NoError(t, err)
		return result
	}
	require.Equal(t, run(), run())
}

func TestRunRejectsLengthMismatch(t *testing.T) {
	sc := newTestScape(t, "ACGTACGT")
	m, err := NewPopulationMonitor(baseConfig(sc))
	require.NoError(t, err)

	initial, err := genotype.Generate(rand.New(rand.NewSource(1)), 4, 5)
	require.NoError(t, err)
	_, err = m.Run(context.Background(), initial)
	require.ErrorIs(t, err, scape.ErrLengthMismatch)
}

func TestRunRejectsPopulationSizeMismatch(t *testing.T) {
	sc := newTestScape(t, "ACGT")
	m, err := NewPopulationMonitor(baseConfig(sc))
	require.NoError(t, err)

	_, err = m.Run(context.Background(), model.Population{sc.Reference(), sc.Reference()})
	require.Error(t, err)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	sc := newTestScape(t, "ACGT")
	m, err := NewPopulationMonitor(baseConfig(sc))
	require.NoError(t, err)
	initial, err := genotype.Generate(m.Rand(), 4, 4)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = m.Run(ctx, initial)
	require.ErrorIs(t, err, context.Canceled)
}
