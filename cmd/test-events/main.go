package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/firstlevel/internal/testevents"
)

// Default configuration constants.
const (
	defaultSubjects    = 20
	defaultRuns        = 4
	defaultCycles      = 8
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultPollTimeout = time.Minute
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		baseURL     = flag.String("url", "http://localhost:9080", "Base URL of the service")
		subjects    = flag.Int("subjects", defaultSubjects, "Number of subjects")
		runs        = flag.Int("runs", defaultRuns, "Runs per subject")
		cycles      = flag.Int("cycles", defaultCycles, "Block cycles per run")
		workers     = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout     = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		pollTimeout = flag.Duration("poll", defaultPollTimeout, "How long to wait for designs to build")
		seed        = flag.Int64("seed", 1, "Base seed for generated tables")
		outDir      = flag.String("out", "", "Directory to save generated tables")
		logFile     = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose     = flag.Bool("verbose", false, "Enable verbose logging")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testevents.ShowHelp()
		return 0
	}

	closer, err := testevents.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return 1
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testevents.Config{
		BaseURL:     *baseURL,
		Subjects:    *subjects,
		Runs:        *runs,
		Cycles:      *cycles,
		Workers:     *workers,
		Timeout:     *timeout,
		PollTimeout: *pollTimeout,
		Seed:        *seed,
		OutputDir:   *outDir,
		Verbose:     *verbose,
	}

	if _, err := testevents.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return 1
	}
	return 0
}
