package evo

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"bfoalign/internal/model"
	"bfoalign/internal/scape"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Member is one sequence together with its score.
type Member struct {
	Index    int            `json:"index"`
	Sequence model.Sequence `json:"sequence"`
	Score    float64        `json:"score"`
}

// CycleReport is emitted once per completed cycle.
type CycleReport struct {
	Cycle int
	// StartScores are the scores evaluated at the start of the cycle.
	StartScores []float64
	// Scores are aligned with Population after dispersal.
	Scores      []float64
	Population  model.Population
	Diagnostics model.CycleDiagnostics
}

type Observer func(CycleReport)

type RunResult struct {
	Cycles          []model.CycleDiagnostics
	FinalPopulation model.Population
	FinalScores     []float64
	// Best is the highest-scoring member seen at any point in the run.
	Best Member
	// FinalBest is the member of the final population the ranking puts first.
	FinalBest   Member
	Evaluations int
}

type MonitorConfig struct {
	Scape          scape.Scape
	Ranking        Ranking
	PopulationSize int
	Cycles         int
	// MaxCycles caps Cycles when > 0; 0 runs every configured cycle.
	MaxCycles              int
	Steps                  int
	EliminationProbability float64
	DispersalBounds        Bounds
	Seed                   int64
	Observer               Observer
}

type PopulationMonitor struct {
	cfg MonitorConfig
	rng *rand.Rand
}

func NewPopulationMonitor(cfg MonitorConfig) (*PopulationMonitor, error) {
	if cfg.Scape == nil {
		return nil, fmt.Errorf("%w: scape is required", ErrInvalidConfig)
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0", ErrInvalidConfig)
	}
	if cfg.PopulationSize%2 != 0 {
		return nil, fmt.Errorf("%w: population size must be even, got %d", ErrInvalidConfig, cfg.PopulationSize)
	}
	if cfg.Cycles <= 0 {
		return nil, fmt.Errorf("%w: cycle count must be > 0", ErrInvalidConfig)
	}
	if cfg.MaxCycles < 0 {
		return nil, fmt.Errorf("%w: max cycles must be >= 0", ErrInvalidConfig)
	}
	if cfg.Steps < 0 {
		return nil, fmt.Errorf("%w: step count must be >= 0", ErrInvalidConfig)
	}
	if !validProbability(cfg.EliminationProbability) {
		return nil, fmt.Errorf("%w: elimination probability must be in [0, 1], got %g", ErrInvalidConfig, cfg.EliminationProbability)
	}
	if err := cfg.DispersalBounds.Validate(); err != nil {
		return nil, err
	}
	if cfg.Ranking == nil {
		cfg.Ranking = LiteralRanking{}
	}

	return &PopulationMonitor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Rand exposes the run's random source so the initial population can be
// drawn from the same seeded stream.
func (m *PopulationMonitor) Rand() *rand.Rand {
	return m.rng
}

// EffectiveCycles is the number of cycles Run will execute.
func (m *PopulationMonitor) EffectiveCycles() int {
	if m.cfg.MaxCycles > 0 && m.cfg.MaxCycles < m.cfg.Cycles {
		return m.cfg.MaxCycles
	}
	return m.cfg.Cycles
}

func (m *PopulationMonitor) Run(ctx context.Context, initial model.Population) (RunResult, error) {
	if len(initial) != m.cfg.PopulationSize {
		return RunResult{}, fmt.Errorf("initial population mismatch: got=%d want=%d", len(initial), m.cfg.PopulationSize)
	}

	population := initial.Clone()
	cycles := m.EffectiveCycles()
	result := RunResult{
		Cycles: make([]model.CycleDiagnostics, 0, cycles),
		Best:   Member{Index: -1},
	}
	track := func(idx int, seq model.Sequence, score float64) {
		if result.Best.Index < 0 || score > result.Best.Score {
			result.Best = Member{Index: idx, Sequence: seq.Clone(), Score: score}
		}
	}

	var scores []float64
	for cycle := 1; cycle <= cycles; cycle++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		var err error
		scores, err = scape.EvaluateAll(m.cfg.Scape, population)
		if err != nil {
			return RunResult{}, err
		}
		result.Evaluations += len(population)
		for i := range population {
			track(i, population[i], scores[i])
		}
		startScores := append([]float64(nil), scores...)

		accepted, reverted := 0, 0
		for step := 0; step < m.cfg.Steps; step++ {
			if err := ctx.Err(); err != nil {
				return RunResult{}, err
			}
			for i := range population {
				candidate := Chemotaxis(m.rng, population[i])
				score, err := m.cfg.Scape.Evaluate(candidate)
				if err != nil {
					return RunResult{}, fmt.Errorf("cycle %d step %d member %d: %w", cycle, step+1, i, err)
				}
				result.Evaluations++
				if !Accept(scores[i], score) {
					reverted++
					continue
				}
				accepted++
				population[i] = candidate
				scores[i] = score
				track(i, candidate, score)
			}
		}

		population, scores, err = Reproduce(population, scores, m.cfg.Ranking)
		if err != nil {
			return RunResult{}, fmt.Errorf("cycle %d reproduce: %w", cycle, err)
		}

		dispersed, err := Disperse(m.rng, population, m.cfg.EliminationProbability, m.cfg.DispersalBounds)
		if err != nil {
			return RunResult{}, fmt.Errorf("cycle %d disperse: %w", cycle, err)
		}
		for _, i := range dispersed {
			score, err := m.cfg.Scape.Evaluate(population[i])
			if err != nil {
				return RunResult{}, fmt.Errorf("cycle %d rescore member %d: %w", cycle, i, err)
			}
			result.Evaluations++
			scores[i] = score
			track(i, population[i], score)
		}

		diag := diagnose(cycle, scores)
		diag.Accepted = accepted
		diag.Reverted = reverted
		diag.Dispersed = len(dispersed)
		diag.Evaluations = result.Evaluations
		result.Cycles = append(result.Cycles, diag)

		if m.cfg.Observer != nil {
			m.cfg.Observer(CycleReport{
				Cycle:       cycle,
				StartScores: startScores,
				Scores:      append([]float64(nil), scores...),
				Population:  population.Clone(),
				Diagnostics: diag,
			})
		}
	}

	result.FinalPopulation = population
	result.FinalScores = scores
	if idx := BestIndex(scores, m.cfg.Ranking); idx >= 0 {
		result.FinalBest = Member{Index: idx, Sequence: population[idx].Clone(), Score: scores[idx]}
	}
	return result, nil
}

func diagnose(cycle int, scores []float64) model.CycleDiagnostics {
	diag := model.CycleDiagnostics{Cycle: cycle}
	if len(scores) == 0 {
		return diag
	}
	diag.BestScore = scores[0]
	diag.MinScore = scores[0]
	sum := 0.0
	for _, s := range scores {
		sum += s
		if s > diag.BestScore {
			diag.BestScore = s
		}
		if s < diag.MinScore {
			diag.MinScore = s
		}
	}
	diag.MeanScore = sum / float64(len(scores))
	return diag
}
