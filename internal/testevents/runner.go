package testevents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/firstlevel/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run executes the complete design load test.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting design load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("subjects", config.Subjects),
		logger.Int("runs", config.Runs),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose),
	)

	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	tables, err := generateTables(ctx, config, stats)
	if err != nil {
		return stats, fmt.Errorf("table generation failed: %w", err)
	}

	if config.OutputDir != "" {
		if err := saveTables(ctx, config.OutputDir, tables); err != nil {
			logger.Get().Warn(ctx, "failed to save tables", logger.Error(err))
		}
	}

	subs := submitTables(ctx, config, tables, stats)
	if stats.TablesFailed > 0 {
		return stats, fmt.Errorf("%d of %d submissions failed", stats.TablesFailed, stats.TablesSubmitted)
	}

	if err := verifyDesigns(ctx, config, subs, stats); err != nil {
		return stats, fmt.Errorf("design verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return stats, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// saveTables writes each generated table as a BIDS-style events file.
func saveTables(ctx context.Context, dir string, tables []Table) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for _, t := range tables {
		name := filepath.Join(dir, fmt.Sprintf("%s_task-loadtest_run-%s_events.tsv", t.Subject, t.Run))
		if err := os.WriteFile(name, t.Payload, filePermission); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	logger.Get().Info(ctx, "tables saved", logger.String("dir", dir), logger.Int("tables", len(tables)))
	return nil
}

// displayFinalStats logs the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, tablesPerSecond float64

	if stats.TablesSubmitted > 0 {
		successRate = float64(stats.DesignsReady) / float64(stats.TablesSubmitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		tablesPerSecond = float64(stats.TablesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("tablesGenerated", stats.TablesGenerated),
		logger.Int("tablesSubmitted", stats.TablesSubmitted),
		logger.Int("tablesAccepted", stats.TablesAccepted),
		logger.Int("tablesDuplicate", stats.TablesDuplicate),
		logger.Int("designsReady", stats.DesignsReady),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("tablesPerSecond", tablesPerSecond),
	)
}
