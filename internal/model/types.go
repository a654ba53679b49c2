package model

import (
	"fmt"
	"strings"
)

// Base is one symbol of a DNA-like sequence.
type Base byte

// Alphabet is the ordered set of bases every sequence is drawn from.
var Alphabet = [...]Base{'A', 'C', 'T', 'G'}

func IsBase(b Base) bool {
	for _, candidate := range Alphabet {
		if b == candidate {
			return true
		}
	}
	return false
}

// Sequence is one candidate solution (a "bacterium").
type Sequence []Base

func (s Sequence) String() string {
	return string(s)
}

func (s Sequence) Clone() Sequence {
	if s == nil {
		return nil
	}
	return append(Sequence(nil), s...)
}

// MarshalText keeps encoded sequences readable instead of base64.
func (s Sequence) MarshalText() ([]byte, error) {
	return []byte(string(s)), nil
}

func (s *Sequence) UnmarshalText(text []byte) error {
	seq, err := ParseSequence(string(text))
	if err != nil {
		return err
	}
	*s = seq
	return nil
}

// Counts returns how many times each alphabet base occurs, in Alphabet order.
func (s Sequence) Counts() [len(Alphabet)]int {
	var counts [len(Alphabet)]int
	for _, b := range s {
		for i, candidate := range Alphabet {
			if b == candidate {
				counts[i]++
				break
			}
		}
	}
	return counts
}

// ParseSequence converts text into a Sequence, upper-casing and rejecting
// anything outside Alphabet.
func ParseSequence(text string) (Sequence, error) {
	text = strings.ToUpper(strings.TrimSpace(text))
	seq := make(Sequence, len(text))
	for i := 0; i < len(text); i++ {
		b := Base(text[i])
		if !IsBase(b) {
			return nil, fmt.Errorf("invalid base %q at position %d", text[i], i)
		}
		seq[i] = b
	}
	return seq, nil
}

type Population []Sequence

func (p Population) Clone() Population {
	if p == nil {
		return nil
	}
	out := make(Population, len(p))
	for i, seq := range p {
		out[i] = seq.Clone()
	}
	return out
}

// VersionedRecord captures schema and codec evolution for encoded records.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type CycleDiagnostics struct {
	Cycle       int     `json:"cycle"`
	BestScore   float64 `json:"best_score"`
	MeanScore   float64 `json:"mean_score"`
	MinScore    float64 `json:"min_score"`
	Accepted    int     `json:"accepted"`
	Reverted    int     `json:"reverted"`
	Dispersed   int     `json:"dispersed"`
	Evaluations int     `json:"evaluations"`
}

type RunConfig struct {
	CycleCount             int     `json:"cycle_count"`
	MaxCycles              int     `json:"max_cycles"`
	StepCount              int     `json:"step_count"`
	PopulationSize         int     `json:"population_size"`
	SequenceLength         int     `json:"sequence_length"`
	EliminationProbability float64 `json:"elimination_probability"`
	DispersalBounds        [2]int  `json:"dispersal_bounds"`
	Ranking                string  `json:"ranking"`
	Seed                   int64   `json:"seed"`
	ReferenceName          string  `json:"reference_name"`
}

// RunRecord is everything one optimization run produced.
type RunRecord struct {
	VersionedRecord
	RunID           string             `json:"run_id"`
	CreatedAtUTC    string             `json:"created_at_utc"`
	Config          RunConfig          `json:"config"`
	Cycles          []CycleDiagnostics `json:"cycles"`
	Evaluations     int                `json:"evaluations"`
	BestScore       float64            `json:"best_score"`
	BestSequence    string             `json:"best_sequence"`
	FinalBestScore  float64            `json:"final_best_score"`
	FinalBestIndex  int                `json:"final_best_index"`
	FinalScores     []float64          `json:"final_scores"`
	FinalPopulation []string           `json:"final_population,omitempty"`
	ElapsedMillis   int64              `json:"elapsed_ms"`
}
