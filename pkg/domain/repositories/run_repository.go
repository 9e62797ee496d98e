package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrRunNotFound is returned when a run ID is unknown
var ErrRunNotFound = errors.New("run not found")

// RunRecord is a persisted run: indexed header fields plus JSON payloads
type RunRecord struct {
	RunID     string
	Workflow  string
	Source    string
	StartedAt time.Time
	// Summary holds the run statistics
	Summary json.RawMessage
	// Lines holds the result table; listings leave it empty
	Lines json.RawMessage
}

// RunRepository provides access to stored runs
type RunRepository interface {
	SaveRun(ctx context.Context, record RunRecord) error
	GetRun(ctx context.Context, runID string) (*RunRecord, error)
	// ListRuns returns the newest runs first, without their lines
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}
