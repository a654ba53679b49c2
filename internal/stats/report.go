package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"

	"bfoalign/internal/model"
)

const timestampLayout = "%Y-%m-%d %H:%M:%S UTC"

// ANSI escapes used when the report is written to a terminal.
const (
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorGreen  = "\x1b[32m"
	colorReset  = "\x1b[0m"
)

type ReportOptions struct {
	Color          bool
	ShowPopulation bool
}

// FormatTimestamp renders t in UTC the way run records store it.
func FormatTimestamp(t time.Time) string {
	return strftime.Format(timestampLayout, t.UTC())
}

func paint(opts ReportOptions, color, text string) string {
	if !opts.Color {
		return text
	}
	return color + text + colorReset
}

// FormatScores renders a score array with two decimals.
func FormatScores(scores []float64) string {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%.2f", s)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// WriteCycleLine prints the per-cycle score array.
func WriteCycleLine(w io.Writer, cycle int, scores []float64, opts ReportOptions) error {
	_, err := fmt.Fprintf(w, "%s %s\n", paint(opts, colorYellow, fmt.Sprintf("cycle %d scores:", cycle)), FormatScores(scores))
	return err
}

func WriteReport(w io.Writer, record model.RunRecord, opts ReportOptions) error {
	var b strings.Builder
	cfg := record.Config

	fmt.Fprintf(&b, "%s\n", paint(opts, colorRed, fmt.Sprintf("run %s", record.RunID)))
	if record.CreatedAtUTC != "" {
		fmt.Fprintf(&b, "created:     %s\n", record.CreatedAtUTC)
	}
	fmt.Fprintf(&b, "reference:   %s (%d bp)\n", cfg.ReferenceName, cfg.SequenceLength)
	fmt.Fprintf(&b, "config:      population=%d steps=%d cycles=%d/%d ranking=%s p_elim=%.2f bounds=[%d, %d] seed=%d\n",
		cfg.PopulationSize, cfg.StepCount, len(record.Cycles), cfg.CycleCount, cfg.Ranking,
		cfg.EliminationProbability, cfg.DispersalBounds[0], cfg.DispersalBounds[1], cfg.Seed)
	if cfg.MaxCycles > 0 && cfg.MaxCycles < cfg.CycleCount {
		fmt.Fprintf(&b, "note:        cycles capped at %d (max_cycles)\n", cfg.MaxCycles)
	}
	for _, c := range record.Cycles {
		fmt.Fprintf(&b, "cycle %-5d best=%6.2f mean=%6.2f min=%6.2f accepted=%d reverted=%d dispersed=%d\n",
			c.Cycle, c.BestScore, c.MeanScore, c.MinScore, c.Accepted, c.Reverted, c.Dispersed)
	}
	fmt.Fprintf(&b, "evaluations: %s\n", humanize.Comma(int64(record.Evaluations)))
	fmt.Fprintf(&b, "elapsed:     %s\n", time.Duration(record.ElapsedMillis)*time.Millisecond)
	fmt.Fprintf(&b, "final:       %s\n", FormatScores(record.FinalScores))
	fmt.Fprintf(&b, "final best (%s ranking): member %d score=%.2f\n", cfg.Ranking, record.FinalBestIndex, record.FinalBestScore)
	fmt.Fprintf(&b, "%s %.2f%%\n", paint(opts, colorGreen, "best solution:"), record.BestScore)
	fmt.Fprintf(&b, "%s\n", record.BestSequence)
	if opts.ShowPopulation {
		fmt.Fprintf(&b, "population:\n")
		for _, seq := range record.FinalPopulation {
			fmt.Fprintf(&b, "%s\n", seq)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
