package testevents

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/okian/firstlevel/internal/adapters/eventfile"
	"github.com/okian/firstlevel/internal/domain/grouping"
	"github.com/okian/firstlevel/internal/paradigm"
	"github.com/okian/firstlevel/pkg/logger"
)

// Paradigm shape of generated runs.
const (
	jitterSeconds = 2.0
	seedStride    = 7919
)

var conditionSets = [][]string{
	{"Finger", "Foot", "Lips"},
	{"Face", "House", "Scrambled"},
	{"Congruent", "Incongruent"},
	{"Left", "Right", "Rest", "Catch"},
}

// generateTables builds one table per subject and run. Each table gets its
// own seed, so runs differ in order and jitter but are reproducible.
func generateTables(ctx context.Context, config *Config, stats *Stats) ([]Table, error) {
	logger.Get().Info(ctx, "generating event tables",
		logger.Int("subjects", config.Subjects),
		logger.Int("runs", config.Runs),
	)

	tables := make([]Table, 0, config.Subjects*config.Runs)
	for s := 0; s < config.Subjects; s++ {
		subject := fmt.Sprintf("sub-%02d", s+1)
		for r := 0; r < config.Runs; r++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			seed := config.Seed + int64(len(tables))*seedStride
			gen := paradigm.New(
				paradigm.WithConditions(conditionSets[(s+r)%len(conditionSets)]...),
				paradigm.WithCycles(config.Cycles),
				paradigm.WithShuffle(true),
				paradigm.WithJitter(jitterSeconds),
				paradigm.WithWeights(r%2 == 1),
				paradigm.WithSeed(seed),
			)
			recs := gen.Records()

			var buf bytes.Buffer
			if err := eventfile.Write(&buf, recs); err != nil {
				return nil, fmt.Errorf("write table %s run %d: %w", subject, r+1, err)
			}
			expected, err := grouping.Group(recs)
			if err != nil {
				return nil, fmt.Errorf("group table %s run %d: %w", subject, r+1, err)
			}

			tables = append(tables, Table{
				Subject:  subject,
				Run:      strconv.Itoa(r + 1),
				Payload:  buf.Bytes(),
				Expected: expected,
			})
		}
	}

	stats.TablesGenerated = len(tables)
	logger.Get().Info(ctx, "event tables generated", logger.Int("tables", len(tables)))
	return tables, nil
}
