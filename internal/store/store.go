// Package store persists attribution runs and their per-client decisions to
// SQLite or PostgreSQL.
package store

import (
	"context"
	"time"

	"github.com/sells-group/attribution-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status       model.RunStatus `json:"status,omitempty"`
	CreatedAfter time.Time       `json:"created_after,omitempty"`
	Limit        int             `json:"limit,omitempty"`
	Offset       int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for attribution runs.
type Store interface {
	// CreateRun inserts a new run in the running state.
	CreateRun(ctx context.Context) (*model.Run, error)

	// SaveReport stores the finished report and marks the run complete.
	// The per-client decisions and per-channel aggregates are also written
	// to their own tables for SQL-level access.
	SaveReport(ctx context.Context, runID string, report *model.AttributionReport) error

	// FailRun marks the run failed with the given error message.
	FailRun(ctx context.Context, runID string, errMsg string) error

	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// decisionColumns is the column order shared by both backends for the
// decisions table. Rows are keyed by (run_id, seq), the decision's position
// in the report: a bundle can legitimately list the same client email twice,
// and each occurrence gets its own decision row.
var decisionColumns = []string{
	"run_id", "seq", "client_email", "source", "method", "confidence", "revenue", "evidence",
}

// statsColumns is the column order for the channel_stats table.
var statsColumns = []string{"run_id", "source", "clients", "revenue"}
