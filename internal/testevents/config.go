package testevents

import (
	"time"

	"github.com/okian/firstlevel/internal/domain/model"
	"github.com/okian/firstlevel/internal/domain/types"
)

// Config holds configuration for the design load test.
type Config struct {
	BaseURL     string        // Base URL of the service
	Subjects    int           // Number of subjects to generate
	Runs        int           // Runs per subject
	Cycles      int           // Block cycles per run
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	PollTimeout time.Duration // How long to wait for designs to leave pending
	Seed        int64         // Base seed for generated paradigms
	OutputDir   string        // Directory for generated tables; empty skips saving
	Verbose     bool          // Log every design
}

// Table is one generated subject/run event table and the model the
// service is expected to build from it.
type Table struct {
	Subject  string
	Run      string
	Payload  []byte
	Expected model.ConditionModel
}

// submission pairs a table with the receipt the service returned.
type submission struct {
	table   Table
	receipt types.Receipt
}

// Stats holds test statistics.
type Stats struct {
	TablesGenerated int
	TablesSubmitted int
	TablesAccepted  int
	TablesDuplicate int
	TablesFailed    int
	DesignsReady    int
	DesignsMismatch int
	DesignsFailed   int
	DesignsTimedOut int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
