package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bfoalign/internal/model"
)

func sampleRecord() model.RunRecord {
	return model.RunRecord{
		RunID:        "run-1",
		CreatedAtUTC: "2023-05-08 10:00:00 UTC",
		Config: model.RunConfig{
			CycleCount:             100,
			MaxCycles:              1,
			StepCount:              10,
			PopulationSize:         2,
			SequenceLength:         8,
			EliminationProbability: 0.25,
			DispersalBounds:        [2]int{-10, 10},
			Ranking:                "literal",
			Seed:                   1,
			ReferenceName:          "strain",
		},
		Cycles: []model.CycleDiagnostics{
			{Cycle: 1, BestScore: 50, MeanScore: 43.75, MinScore: 37.5, Accepted: 7, Reverted: 13, Dispersed: 1},
		},
		Evaluations:     12345,
		BestScore:       62.5,
		BestSequence:    "ACGTACGA",
		FinalBestScore:  37.5,
		FinalScores:     []float64{37.5, 50},
		FinalPopulation: []string{"ACGTTTTT", "ACGTAAAA"},
		ElapsedMillis:   3,
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2023, 5, 8, 7, 4, 5, 0, time.FixedZone("x", -3*3600))
	require.Equal(t, "2023-05-08 10:04:05 UTC", FormatTimestamp(ts))
}

func TestFormatScores(t *testing.T) {
	require.Equal(t, "[25.00 33.33]", FormatScores([]float64{25, 100.0 / 3}))
	require.Equal(t, "[]", FormatScores(nil))
}

func TestWriteReportPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleRecord(), ReportOptions{}))
	out := buf.String()

	require.Contains(t, out, "run run-1")
	require.Contains(t, out, "strain (8 bp)")
	require.Contains(t, out, "cycles=1/100")
	require.Contains(t, out, "cycles capped at 1")
	require.Contains(t, out, "evaluations: 12,345")
	require.Contains(t, out, "best solution: 62.50%")
	require.Contains(t, out, "ACGTACGA")
	require.Contains(t, out, "final best (literal ranking): member 0 score=37.50")
	require.NotContains(t, out, "\x1b[")
	require.NotContains(t, out, "population:")
}

func TestWriteReportColorAndPopulation(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, sampleRecord(), ReportOptions{Color: true, ShowPopulation: true}))
	out := buf.String()

	require.Contains(t, out, colorRed+"run run-1"+colorReset)
	require.Contains(t, out, "population:\nACGTTTTT\nACGTAAAA\n")
}

func TestWriteCycleLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCycleLine(&buf, 2, []float64{12.5, 50}, ReportOptions{}))
	require.Equal(t, "cycle 2 scores: [12.50 50.00]\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteCycleLine(&buf, 1, []float64{1}, ReportOptions{Color: true}))
	require.True(t, strings.HasPrefix(buf.String(), colorYellow))
}
