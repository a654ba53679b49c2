package main

import (
	"encoding/json"
	"fmt"
	"os"

	"bfoalign/pkg/bfoalign"
)

// fileConfig is the JSON shape printed by `defaults` and accepted by -config.
type fileConfig struct {
	RunID                  string  `json:"run_id,omitempty"`
	ReferencePath          string  `json:"reference_path,omitempty"`
	CycleCount             int     `json:"cycle_count"`
	MaxCycles              int     `json:"max_cycles"`
	StepCount              int     `json:"step_count"`
	PopulationSize         int     `json:"population_size"`
	SequenceLength         int     `json:"sequence_length,omitempty"`
	EliminationProbability float64 `json:"elimination_probability"`
	DispersalBounds        [2]int  `json:"dispersal_bounds"`
	Ranking                string  `json:"ranking"`
	Seed                   int64   `json:"seed"`
}

func defaultFileConfig() fileConfig {
	req := bfoalign.DefaultRunRequest()
	return fileConfig{
		CycleCount:             req.CycleCount,
		MaxCycles:              *req.MaxCycles,
		StepCount:              *req.StepCount,
		PopulationSize:         req.PopulationSize,
		EliminationProbability: *req.EliminationProbability,
		DispersalBounds:        *req.DispersalBounds,
		Ranking:                req.Ranking,
		Seed:                   *req.Seed,
	}
}

// loadRunRequestFromConfig applies the keys present in the JSON file at path
// on top of req. It returns the reference path, if the file names one.
func loadRunRequestFromConfig(path string, req *bfoalign.RunRequest) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", fmt.Errorf("parse config %s: %w", path, err)
	}

	var referencePath string
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["reference_path"]); ok {
		referencePath = v
	}
	if v, ok := asInt(raw["cycle_count"]); ok {
		if v <= 0 {
			return "", fmt.Errorf("config %s: %w: cycle_count must be > 0, got %d", path, bfoalign.ErrInvalidConfig, v)
		}
		req.CycleCount = v
	}
	if v, ok := asInt(raw["max_cycles"]); ok {
		req.MaxCycles = &v
	}
	if v, ok := asInt(raw["step_count"]); ok {
		req.StepCount = &v
	}
	if v, ok := asInt(raw["population_size"]); ok {
		if v <= 0 {
			return "", fmt.Errorf("config %s: %w: population_size must be > 0, got %d", path, bfoalign.ErrInvalidConfig, v)
		}
		req.PopulationSize = v
	}
	if v, ok := asInt(raw["sequence_length"]); ok {
		req.SequenceLength = v
	}
	if v, ok := asFloat64(raw["elimination_probability"]); ok {
		req.EliminationProbability = &v
	}
	if v, ok := raw["dispersal_bounds"]; ok {
		bounds, err := asBounds(v)
		if err != nil {
			return "", fmt.Errorf("config %s: %w", path, err)
		}
		req.DispersalBounds = &bounds
	}
	if v, ok := asString(raw["ranking"]); ok {
		req.Ranking = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = &v
	}
	return referencePath, nil
}

func asBounds(v any) ([2]int, error) {
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		return [2]int{}, fmt.Errorf("dispersal_bounds must be a [low, high] pair")
	}
	low, okLow := asInt(items[0])
	high, okHigh := asInt(items[1])
	if !okLow || !okHigh {
		return [2]int{}, fmt.Errorf("dispersal_bounds must hold integers")
	}
	return [2]int{low, high}, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}

func overrideFromFlags(req *bfoalign.RunRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "run-id":
			req.RunID = v.(string)
		case "cycles":
			req.CycleCount = v.(int)
		case "max-cycles":
			n := v.(int)
			req.MaxCycles = &n
		case "steps":
			n := v.(int)
			req.StepCount = &n
		case "pop":
			req.PopulationSize = v.(int)
		case "length":
			req.SequenceLength = v.(int)
		case "p-elim":
			p := v.(float64)
			req.EliminationProbability = &p
		case "bounds-low":
			bounds := currentBounds(req)
			bounds[0] = v.(int)
			req.DispersalBounds = &bounds
		case "bounds-high":
			bounds := currentBounds(req)
			bounds[1] = v.(int)
			req.DispersalBounds = &bounds
		case "ranking":
			req.Ranking = v.(string)
		case "seed":
			seed := v.(int64)
			req.Seed = &seed
		}
	}
}

func currentBounds(req *bfoalign.RunRequest) [2]int {
	if req.DispersalBounds == nil {
		return bfoalign.DefaultDispersalBounds()
	}
	return *req.DispersalBounds
}
