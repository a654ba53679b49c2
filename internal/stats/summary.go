package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"

	"bfoalign/internal/model"
)

// RepeatSummary aggregates the best scores of repeated runs.
type RepeatSummary struct {
	TotalRuns      int     `json:"total_runs"`
	PerfectRuns    int     `json:"perfect_runs"`
	AvgBest        float64 `json:"avg_best"`
	StdBest        float64 `json:"std_best"`
	MinBest        float64 `json:"min_best"`
	MaxBest        float64 `json:"max_best"`
	AvgEvaluations float64 `json:"avg_evaluations"`
	BestRunID      string  `json:"best_run_id"`
}

func Summarize(records []model.RunRecord) RepeatSummary {
	summary := RepeatSummary{TotalRuns: len(records)}
	if len(records) == 0 {
		return summary
	}

	values := make([]float64, len(records))
	evaluations := 0.0
	summary.MinBest = records[0].BestScore
	summary.MaxBest = records[0].BestScore
	summary.BestRunID = records[0].RunID
	for i, record := range records {
		values[i] = record.BestScore
		evaluations += float64(record.Evaluations)
		if record.BestScore >= 100 {
			summary.PerfectRuns++
		}
		if record.BestScore < summary.MinBest {
			summary.MinBest = record.BestScore
		}
		if record.BestScore > summary.MaxBest {
			summary.MaxBest = record.BestScore
			summary.BestRunID = record.RunID
		}
	}
	summary.AvgBest, summary.StdBest = meanStd(values)
	summary.AvgEvaluations = evaluations / float64(len(records))
	return summary
}

func WriteSummary(w io.Writer, summary RepeatSummary) error {
	_, err := fmt.Fprintf(w,
		"runs: %d perfect=%d best avg=%.2f std=%.2f min=%.2f max=%.2f (run %s) avg evaluations=%s\n",
		summary.TotalRuns, summary.PerfectRuns, summary.AvgBest, summary.StdBest,
		summary.MinBest, summary.MaxBest, summary.BestRunID,
		humanize.Comma(int64(math.Round(summary.AvgEvaluations))),
	)
	return err
}

func meanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return mean, math.Sqrt(variance / float64(len(values)))
}
