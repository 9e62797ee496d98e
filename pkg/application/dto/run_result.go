package dto

import (
	"time"

	"github.com/jayjaydesai/WorkBot/pkg/application/services/shared"
	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// RunInput is one table to process with a named workflow
type RunInput struct {
	Workflow string
	Raw      *entities.RawTable
}

// RunStats counts what happened to the lines and groups of a run
type RunStats struct {
	Lines        int            `json:"lines"`
	Groups       int            `json:"groups"`
	GoodToGo     int            `json:"good_to_go"`
	NotToUse     int            `json:"not_to_use"`
	Undecided    int            `json:"undecided"`
	FailedGroups int            `json:"failed_groups"`
	Fallbacks    int            `json:"fallbacks"`
	RuleDecided  map[string]int `json:"rule_decided,omitempty"`
}

// RunResult contains the complete output of one engine run
type RunResult struct {
	RunID       string
	Workflow    string
	Table       *entities.Table
	Allocations shared.AllocationMap
	GroupErrors []*entities.GroupError
	Stats       RunStats
	StartedAt   time.Time
	Duration    time.Duration
}

// CoercedRows is the number of rows with at least one non-numeric quantity read as 0
func (r *RunResult) CoercedRows() int {
	if r.Table == nil {
		return 0
	}
	return r.Table.CoercedRows()
}

// SkippedRows is the number of blank input rows that produced no line
func (r *RunResult) SkippedRows() int {
	if r.Table == nil {
		return 0
	}
	return len(r.Table.SkippedRows)
}

// Warnings returns the coercion warnings of the input
func (r *RunResult) Warnings() []entities.NumericCoercionWarning {
	if r.Table == nil {
		return nil
	}
	return r.Table.Warnings
}

// Summary condenses the result for listings and persistence
func (r *RunResult) Summary() RunSummary {
	source := ""
	if r.Table != nil {
		source = r.Table.Source
	}
	return RunSummary{
		RunID:       r.RunID,
		Workflow:    r.Workflow,
		Source:      source,
		Stats:       r.Stats,
		CoercedRows: r.CoercedRows(),
		SkippedRows: r.SkippedRows(),
		StartedAt:   r.StartedAt,
		DurationMS:  r.Duration.Milliseconds(),
	}
}

// RunSummary is the stored header of a run
type RunSummary struct {
	RunID       string    `json:"run_id"`
	Workflow    string    `json:"workflow"`
	Source      string    `json:"source"`
	Stats       RunStats  `json:"stats"`
	CoercedRows int       `json:"coerced_rows"`
	SkippedRows int       `json:"skipped_rows,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	DurationMS  int64     `json:"duration_ms"`
	Artifact    string    `json:"artifact,omitempty"`
}

// BatchItem is the outcome of one input of a batch; exactly one of Result and Err is set
type BatchItem struct {
	Source string
	Result *RunResult
	Err    error
}
