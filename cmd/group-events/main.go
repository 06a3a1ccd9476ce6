// Command group-events groups BIDS-style event files into per-condition
// onset and duration lists and prints them as JSON, one object per file.
//
// With -generate it writes a synthetic block-design event table instead.
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
	"syscall"
	"unicode/utf8"

	"github.com/okian/firstlevel/internal/adapters/eventfile"
	"github.com/okian/firstlevel/internal/domain/grouping"
	"github.com/okian/firstlevel/internal/domain/model"
	"github.com/okian/firstlevel/internal/paradigm"
	"github.com/okian/firstlevel/pkg/logger"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitBadTable = 3
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// result is one file's output line.
type result struct {
	File  string               `json:"file"`
	Model *model.ConditionModel `json:"model,omitempty"`
	Error string               `json:"error,omitempty"`
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("group-events", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		delimiter = fs.String("delimiter", "\t", "Field separator (single character)")
		onset     = fs.String("onset-column", eventfile.DefaultOnsetColumn, "Onset column name")
		duration  = fs.String("duration-column", eventfile.DefaultDurationColumn, "Duration column name")
		trialType = fs.String("trial-type-column", eventfile.DefaultTrialTypeColumn, "Condition label column name")
		weight    = fs.String("weight-column", eventfile.DefaultWeightColumn, "Optional weight column name")
		pretty    = fs.Bool("pretty", false, "Indent JSON output")
		logLevel  = fs.String("log-level", "warn", "Log level: debug, info, warn, error")

		generate   = fs.Bool("generate", false, "Write a synthetic event table instead of grouping files")
		conditions = fs.String("conditions", "Finger,Foot,Lips", "Generated condition labels, comma separated")
		cycles     = fs.Int("cycles", 4, "Generated block cycles")
		shuffle    = fs.Bool("shuffle", false, "Shuffle condition order within each generated cycle")
		jitter     = fs.Float64("jitter", 0, "Maximum generated onset jitter in seconds")
		weights    = fs.Bool("weights", false, "Add a weight column to the generated table")
		seed       = fs.Int64("seed", 42, "Generator seed")
	)
	fs.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "usage: group-events [flags] FILE...   (\"-\" reads stdin)")
		_, _ = fmt.Fprintln(stderr, "       group-events -generate [flags]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if err := logger.Init(); err != nil {
		_, _ = fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitFailure
	}
	logger.SetOutput(stderr)
	if err := logger.SetLevelString(*logLevel); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log := logger.Named("group-events")

	d, size := utf8.DecodeRuneInString(*delimiter)
	if size == 0 || size != len(*delimiter) {
		_, _ = fmt.Fprintf(stderr, "delimiter must be a single character, got %q\n", *delimiter)
		return exitUsage
	}
	if !eventfile.ValidDelimiter(d) {
		_, _ = fmt.Fprintf(stderr, "delimiter %q is reserved by the table syntax\n", *delimiter)
		return exitUsage
	}
	opts := []eventfile.Option{
		eventfile.WithDelimiter(d),
		eventfile.WithColumns(eventfile.Columns{Onset: *onset, Duration: *duration, TrialType: *trialType, Weight: *weight}),
	}

	if *generate {
		gen := paradigm.New(
			paradigm.WithConditions(splitLabels(*conditions)...),
			paradigm.WithCycles(*cycles),
			paradigm.WithShuffle(*shuffle),
			paradigm.WithJitter(*jitter),
			paradigm.WithWeights(*weights),
			paradigm.WithSeed(*seed),
		)
		if err := eventfile.Write(stdout, gen.Records(), opts...); err != nil {
			log.Error(ctx, "write generated table", logger.Error(err))
			return exitFailure
		}
		return exitOK
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return exitUsage
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}

	code := exitOK
	for _, path := range fs.Args() {
		m, err := groupFile(ctx, path, stdin, opts)
		res := result{File: path}
		if err != nil {
			log.Warn(ctx, "event file rejected", logger.String("file", path), logger.Error(err))
			res.Error = err.Error()
			code = worst(code, exitCode(err))
		} else {
			log.Debug(ctx, "event file grouped",
				logger.String("file", path),
				logger.Int("conditions", m.Len()),
				logger.Int("trials", m.TrialCount()),
			)
			res.Model = &m
		}
		if err := enc.Encode(res); err != nil {
			log.Error(ctx, "write output", logger.Error(err))
			return exitFailure
		}
	}
	return code
}

func groupFile(ctx context.Context, path string, stdin io.Reader, opts []eventfile.Option) (model.ConditionModel, error) {
	var (
		recs []model.TrialRecord
		err  error
	)
	if path == "-" {
		recs, err = eventfile.Read(ctx, stdin, opts...)
	} else {
		recs, err = eventfile.ReadFile(ctx, path, opts...)
	}
	if err != nil {
		return model.ConditionModel{}, err
	}
	return grouping.Group(recs)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, grouping.ErrMalformedRecord),
		errors.Is(err, grouping.ErrNotNumeric),
		errors.Is(err, eventfile.ErrMissingColumn),
		errors.Is(err, eventfile.ErrEmptyTable),
		errors.Is(err, eventfile.ErrReadTable):
		return exitBadTable
	default:
		return exitFailure
	}
}

// worst keeps the first failure code seen.
func worst(current, next int) int {
	if current != exitOK {
		return current
	}
	return next
}

func splitLabels(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
