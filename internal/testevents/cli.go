package testevents

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/firstlevel/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log output to stdout and to logFile. An empty
// logFile gets a timestamped name. The returned closer closes the file.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	if err := logger.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}

	if logFile == "" {
		logFile = "test_log_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger.SetOutput(io.MultiWriter(os.Stdout, file))
	return file, nil
}

// ShowHelp prints usage information for the load test tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Design Load Test Tool
=====================

Generates block-design event tables for many subjects and runs, submits
them to the design service, and checks every served model against local
grouping.

Usage:
  go run ./cmd/test-events [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -subjects int
        Number of subjects (default 20)
  -runs int
        Runs per subject (default 4)
  -cycles int
        Block cycles per run (default 8)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -poll duration
        How long to wait for designs to build (default 1m)
  -seed int
        Base seed for generated tables (default 1)
  -out string
        Directory to save generated tables (default: not saved)
  -log string
        Log file (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  go run ./cmd/test-events -subjects 100 -runs 6 -workers 16
  go run ./cmd/test-events -out ./generated -verbose
`)
}
