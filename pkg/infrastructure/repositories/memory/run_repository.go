package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jayjaydesai/WorkBot/pkg/domain/repositories"
)

// RunRepository provides in-memory run storage
type RunRepository struct {
	mu   sync.RWMutex
	runs map[string]repositories.RunRecord
}

// NewRunRepository creates a new in-memory run repository
func NewRunRepository() *RunRepository {
	return &RunRepository{
		runs: make(map[string]repositories.RunRecord),
	}
}

// Verify interface compliance
var _ repositories.RunRepository = (*RunRepository)(nil)

// SaveRun stores or replaces a run
func (r *RunRepository) SaveRun(_ context.Context, record repositories.RunRecord) error {
	if record.RunID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[record.RunID] = record
	return nil
}

// GetRun returns a stored run
func (r *RunRepository) GetRun(_ context.Context, runID string) (*repositories.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, exists := r.runs[runID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrRunNotFound, runID)
	}
	return &record, nil
}

// ListRuns returns up to limit runs, newest first (limit <= 0 returns all)
func (r *RunRepository) ListRuns(_ context.Context, limit int) ([]repositories.RunRecord, error) {
	r.mu.RLock()
	out := make([]repositories.RunRecord, 0, len(r.runs))
	for _, record := range r.runs {
		record.Lines = nil
		out = append(out, record)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].RunID < out[j].RunID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory repository
func (r *RunRepository) Close() error { return nil }
