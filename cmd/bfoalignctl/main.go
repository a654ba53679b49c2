package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/mattn/go-isatty"

	"bfoalign/internal/stats"
	"bfoalign/internal/strain"
	"bfoalign/pkg/bfoalign"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:], stdout)
	case "defaults":
		return runDefaults(args[1:], stdout)
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func runRun(ctx context.Context, args []string, stdout io.Writer) error {
	def := bfoalign.DefaultRunRequest()
	defBounds := *def.DispersalBounds

	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "optional run config JSON path")
	referencePath := fs.String("reference", "", "reference strain FASTA path ('-' for stdin, .gz accepted); built-in strain when empty")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	cycles := fs.Int("cycles", def.CycleCount, "number of optimization cycles")
	maxCycles := fs.Int("max-cycles", *def.MaxCycles, "cap on executed cycles (0 disables the cap)")
	steps := fs.Int("steps", *def.StepCount, "chemotaxis steps per cycle")
	population := fs.Int("pop", def.PopulationSize, "population size (even)")
	length := fs.Int("length", 0, "sequence length (defaults to the reference length)")
	pElim := fs.Float64("p-elim", *def.EliminationProbability, "per-member elimination-dispersal probability")
	boundsLow := fs.Int("bounds-low", defBounds[0], "dispersal range low bound")
	boundsHigh := fs.Int("bounds-high", defBounds[1], "dispersal range high bound")
	ranking := fs.String("ranking", def.Ranking, "reproduction ranking: literal|similarity")
	seed := fs.Int64("seed", *def.Seed, "rng seed")
	repeat := fs.Int("repeat", 1, "number of independent runs (seed increments per run)")
	jsonOut := fs.Bool("json", false, "emit run records as JSON")
	showPopulation := fs.Bool("show-population", false, "print the final population")
	quiet := fs.Bool("quiet", false, "suppress per-cycle score lines")
	noColor := fs.Bool("no-color", false, "disable ANSI colour")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	if *repeat <= 0 {
		return fmt.Errorf("repeat must be > 0")
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	if setFlags["cycles"] && *cycles <= 0 {
		return fmt.Errorf("%w: cycles must be > 0, got %d", bfoalign.ErrInvalidConfig, *cycles)
	}
	if setFlags["pop"] && *population <= 0 {
		return fmt.Errorf("%w: pop must be > 0, got %d", bfoalign.ErrInvalidConfig, *population)
	}

	req := def
	if *configPath != "" {
		path, err := loadRunRequestFromConfig(*configPath, &req)
		if err != nil {
			return err
		}
		if !setFlags["reference"] {
			*referencePath = path
		}
	}
	overrideFromFlags(&req, setFlags, map[string]any{
		"run-id":      *runID,
		"cycles":      *cycles,
		"max-cycles":  *maxCycles,
		"steps":       *steps,
		"pop":         *population,
		"length":      *length,
		"p-elim":      *pElim,
		"bounds-low":  *boundsLow,
		"bounds-high": *boundsHigh,
		"ranking":     *ranking,
		"seed":        *seed,
	})
	if *referencePath != "" {
		ref, err := strain.Load(*referencePath)
		if err != nil {
			return fmt.Errorf("load reference: %w", err)
		}
		req.Reference = ref.Sequence
		req.ReferenceName = ref.Name
	}
	if *repeat > 1 && req.RunID != "" {
		return fmt.Errorf("run-id cannot be combined with repeat > 1")
	}

	opts := stats.ReportOptions{
		Color:          useColor(stdout, *noColor),
		ShowPopulation: *showPopulation,
	}
	req.KeepPopulation = *showPopulation || *jsonOut
	if !*jsonOut && !*quiet {
		req.OnCycle = func(r bfoalign.CycleReport) {
			_ = stats.WriteCycleLine(stdout, r.Cycle, r.StartScores, opts)
		}
	}

	client, err := bfoalign.New(bfoalign.Options{})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if !*jsonOut {
		writeBanner(stdout, opts)
	}
	baseSeed := *req.Seed
	for i := 0; i < *repeat; i++ {
		seed := baseSeed + int64(i)
		req.Seed = &seed
		summary, err := client.Run(ctx, req)
		if err != nil {
			return err
		}
		if *jsonOut {
			data, err := client.Export(ctx, summary.RunID)
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(data))
			continue
		}
		record, err := client.Record(ctx, summary.RunID)
		if err != nil {
			return err
		}
		if err := stats.WriteReport(stdout, record, opts); err != nil {
			return err
		}
	}

	if *repeat > 1 && !*jsonOut {
		records, err := client.Runs(ctx)
		if err != nil {
			return err
		}
		return stats.WriteSummary(stdout, stats.Summarize(records))
	}
	return nil
}

func runDefaults(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("defaults", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}
	data, err := json.MarshalIndent(defaultFileConfig(), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(data))
	return err
}

func writeBanner(w io.Writer, opts stats.ReportOptions) {
	title := "bfoalign: DNA sequence alignment by bacterial foraging"
	if opts.Color {
		title = "\x1b[31m" + title + "\x1b[0m"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", 50))
}

// useColor reports whether w is a terminal that should receive ANSI colour.
func useColor(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func usageError(msg string) error {
	return errors.New(msg + "\nusage: bfoalignctl <run|defaults> [flags]")
}
