package bfoalign

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"bfoalign/internal/evo"
	"bfoalign/internal/genotype"
	"bfoalign/internal/model"
	"bfoalign/internal/scape"
	"bfoalign/internal/stats"
	"bfoalign/internal/storage"
	"bfoalign/internal/strain"
)

const (
	DefaultCycleCount             = 100
	DefaultMaxCycles              = 1
	DefaultStepCount              = 10
	DefaultPopulationSize         = 2
	DefaultEliminationProbability = 0.25
	DefaultSeed                   = 1
	DefaultRanking                = evo.RankingLiteral
)

var (
	ErrInvalidConfig       = evo.ErrInvalidConfig
	ErrLengthMismatch      = scape.ErrLengthMismatch
	ErrDegenerateReference = scape.ErrDegenerateReference
	ErrRunNotFound         = errors.New("run not found")
)

type (
	RunRecord        = model.RunRecord
	RunConfig        = model.RunConfig
	CycleDiagnostics = model.CycleDiagnostics
	Sequence         = model.Sequence
)

func DefaultDispersalBounds() [2]int {
	b := evo.DefaultBounds()
	return [2]int{b.Low, b.High}
}

type Options struct {
	StoreKind string
}

type Client struct {
	store storage.Store
	now   func() time.Time

	mu          sync.Mutex
	initialized bool
}

// CycleReport is delivered to RunRequest.OnCycle after every cycle.
type CycleReport struct {
	Cycle       int
	StartScores []float64
	Scores      []float64
	Population  []string
	Diagnostics CycleDiagnostics
}

// RunRequest configures one run. Nil pointers and zero counts take the
// package defaults; a nil Reference uses the built-in strain. Fields where
// zero is a meaningful value are pointers.
type RunRequest struct {
	RunID         string
	Reference     Sequence
	ReferenceName string
	// SequenceLength must equal len(Reference) when set.
	SequenceLength int
	CycleCount     int
	// MaxCycles caps CycleCount; nil uses DefaultMaxCycles and 0 removes the
	// cap.
	MaxCycles              *int
	StepCount              *int
	PopulationSize         int
	EliminationProbability *float64
	DispersalBounds        *[2]int
	Ranking                string
	Seed                   *int64
	KeepPopulation         bool
	OnCycle                func(CycleReport)
}

type RunSummary struct {
	RunID  string
	Record RunRecord
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	store, err := storage.NewStore(storeKind)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, now: time.Now}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// DefaultRunRequest returns a request with every default filled in.
func DefaultRunRequest() RunRequest {
	maxCycles := DefaultMaxCycles
	steps := DefaultStepCount
	probability := DefaultEliminationProbability
	bounds := DefaultDispersalBounds()
	seed := int64(DefaultSeed)
	return RunRequest{
		CycleCount:             DefaultCycleCount,
		MaxCycles:              &maxCycles,
		StepCount:              &steps,
		PopulationSize:         DefaultPopulationSize,
		EliminationProbability: &probability,
		DispersalBounds:        &bounds,
		Ranking:                DefaultRanking,
		Seed:                   &seed,
	}
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	req = withDefaults(req)

	if req.Reference == nil {
		def := strain.Default()
		req.Reference = def.Sequence
		if req.ReferenceName == "" {
			req.ReferenceName = def.Name
		}
	}
	sc, err := scape.NewAlignmentScape(req.ReferenceName, req.Reference)
	if err != nil {
		return RunSummary{}, err
	}
	if req.SequenceLength == 0 {
		req.SequenceLength = sc.Len()
	}
	if req.SequenceLength != sc.Len() {
		return RunSummary{}, fmt.Errorf("%w: sequence length %d does not match reference length %d", ErrInvalidConfig, req.SequenceLength, sc.Len())
	}
	ranking, err := evo.RankingFromName(req.Ranking)
	if err != nil {
		return RunSummary{}, err
	}
	bounds := evo.Bounds{Low: req.DispersalBounds[0], High: req.DispersalBounds[1]}

	cfg := evo.MonitorConfig{
		Scape:                  sc,
		Ranking:                ranking,
		PopulationSize:         req.PopulationSize,
		Cycles:                 req.CycleCount,
		MaxCycles:              *req.MaxCycles,
		Steps:                  *req.StepCount,
		EliminationProbability: *req.EliminationProbability,
		DispersalBounds:        bounds,
		Seed:                   *req.Seed,
	}
	if req.OnCycle != nil {
		onCycle := req.OnCycle
		cfg.Observer = func(r evo.CycleReport) {
			onCycle(CycleReport{
				Cycle:       r.Cycle,
				StartScores: r.StartScores,
				Scores:      r.Scores,
				Population:  sequencesToStrings(r.Population),
				Diagnostics: r.Diagnostics,
			})
		}
	}
	monitor, err := evo.NewPopulationMonitor(cfg)
	if err != nil {
		return RunSummary{}, err
	}
	initial, err := initialPopulation(monitor.Rand(), req.PopulationSize, req.SequenceLength)
	if err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	started := c.now()
	result, err := monitor.Run(ctx, initial)
	if err != nil {
		return RunSummary{}, err
	}
	elapsed := c.now().Sub(started)

	record := storage.Stamp(model.RunRecord{
		RunID:        runID,
		CreatedAtUTC: stats.FormatTimestamp(started),
		Config: model.RunConfig{
			CycleCount:             req.CycleCount,
			MaxCycles:              *req.MaxCycles,
			StepCount:              *req.StepCount,
			PopulationSize:         req.PopulationSize,
			SequenceLength:         req.SequenceLength,
			EliminationProbability: *req.EliminationProbability,
			DispersalBounds:        *req.DispersalBounds,
			Ranking:                ranking.Name(),
			Seed:                   *req.Seed,
			ReferenceName:          sc.Name(),
		},
		Cycles:         result.Cycles,
		Evaluations:    result.Evaluations,
		BestScore:      result.Best.Score,
		BestSequence:   result.Best.Sequence.String(),
		FinalBestScore: result.FinalBest.Score,
		FinalBestIndex: result.FinalBest.Index,
		FinalScores:    result.FinalScores,
		ElapsedMillis:  elapsed.Milliseconds(),
	})
	if req.KeepPopulation {
		record.FinalPopulation = sequencesToStrings(result.FinalPopulation)
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, err
	}
	return RunSummary{RunID: runID, Record: record}, nil
}

// Runs lists the runs this client has completed, oldest first.
func (c *Client) Runs(ctx context.Context) ([]RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	return c.store.ListRuns(ctx)
}

func (c *Client) Record(ctx context.Context, runID string) (RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return RunRecord{}, err
	}
	record, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return RunRecord{}, err
	}
	if !ok {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return record, nil
}

// Export encodes a completed run as versioned JSON.
func (c *Client) Export(ctx context.Context, runID string) ([]byte, error) {
	record, err := c.Record(ctx, runID)
	if err != nil {
		return nil, err
	}
	return storage.EncodeRun(record)
}

func withDefaults(req RunRequest) RunRequest {
	def := DefaultRunRequest()
	if req.CycleCount == 0 {
		req.CycleCount = def.CycleCount
	}
	if req.MaxCycles == nil {
		req.MaxCycles = def.MaxCycles
	}
	if req.StepCount == nil {
		req.StepCount = def.StepCount
	}
	if req.PopulationSize == 0 {
		req.PopulationSize = def.PopulationSize
	}
	if req.EliminationProbability == nil {
		req.EliminationProbability = def.EliminationProbability
	}
	if req.DispersalBounds == nil {
		req.DispersalBounds = def.DispersalBounds
	}
	if req.Ranking == "" {
		req.Ranking = def.Ranking
	}
	if req.Seed == nil {
		req.Seed = def.Seed
	}
	return req
}

func initialPopulation(rng *rand.Rand, size, length int) (model.Population, error) {
	population, err := genotype.Generate(rng, size, length)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return population, nil
}

func sequencesToStrings(population model.Population) []string {
	out := make([]string, len(population))
	for i, seq := range population {
		out[i] = seq.String()
	}
	return out
}
