package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jayjaydesai/WorkBot/pkg/application/dto"
	"github.com/jayjaydesai/WorkBot/pkg/domain/repositories"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/blob"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/tabular"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StoredRun is a persisted run with its decoded summary and lines
type StoredRun struct {
	Summary dto.RunSummary     `json:"summary"`
	Lines   []tabular.JSONLine `json:"lines,omitempty"`
}

// Service persists run results and uploads their workbooks
type Service struct {
	runs   repositories.RunRepository
	blobs  blob.Store
	logger *zap.Logger
}

// NewService creates an archive service. A nil blob store disables uploads.
func NewService(runs repositories.RunRepository, blobs blob.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{runs: runs, blobs: blobs, logger: logger}
}

// ArtifactKey is the blob key of a run's workbook
func ArtifactKey(result *dto.RunResult) string {
	return fmt.Sprintf("runs/%s/%s-%s.xlsx", result.StartedAt.UTC().Format("2006-01-02"), result.Workflow, result.RunID)
}

// Save uploads the workbook (when a blob store is configured) and stores the run.
// An upload failure is logged and the run is still stored without an artifact.
func (s *Service) Save(ctx context.Context, result *dto.RunResult) (dto.RunSummary, error) {
	summary := result.Summary()

	if s.blobs != nil {
		location, err := s.upload(ctx, result)
		if err != nil {
			s.logger.Error("artifact upload failed", zap.String("run_id", result.RunID), zap.Error(err))
		} else {
			summary.Artifact = location
		}
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return summary, fmt.Errorf("encode summary: %w", err)
	}
	linesJSON, err := json.Marshal(tabular.JSONLines(result.Table))
	if err != nil {
		return summary, fmt.Errorf("encode lines: %w", err)
	}

	record := repositories.RunRecord{
		RunID:     result.RunID,
		Workflow:  result.Workflow,
		Source:    summary.Source,
		StartedAt: result.StartedAt,
		Summary:   summaryJSON,
		Lines:     linesJSON,
	}
	if err := s.runs.SaveRun(ctx, record); err != nil {
		return summary, fmt.Errorf("save run %s: %w", result.RunID, err)
	}
	s.logger.Info("run archived",
		zap.String("run_id", result.RunID),
		zap.String("artifact", summary.Artifact))
	return summary, nil
}

func (s *Service) upload(ctx context.Context, result *dto.RunResult) (string, error) {
	var buf bytes.Buffer
	if err := tabular.WriteXLSX(&buf, result.Table, ""); err != nil {
		return "", fmt.Errorf("render workbook: %w", err)
	}
	info, err := s.blobs.Put(ctx, ArtifactKey(result), &buf, xlsxContentType)
	if err != nil {
		return "", err
	}
	return info.Location, nil
}

// Get loads a stored run with its lines
func (s *Service) Get(ctx context.Context, runID string) (*StoredRun, error) {
	record, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	run, err := decode(*record)
	if err != nil {
		return nil, err
	}
	if len(record.Lines) > 0 {
		if err := json.Unmarshal(record.Lines, &run.Lines); err != nil {
			return nil, fmt.Errorf("decode lines of run %s: %w", runID, err)
		}
	}
	return run, nil
}

// List returns the summaries of the newest runs
func (s *Service) List(ctx context.Context, limit int) ([]dto.RunSummary, error) {
	records, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RunSummary, 0, len(records))
	for _, record := range records {
		run, err := decode(record)
		if err != nil {
			return nil, err
		}
		out = append(out, run.Summary)
	}
	return out, nil
}

func decode(record repositories.RunRecord) (*StoredRun, error) {
	run := &StoredRun{}
	if err := json.Unmarshal(record.Summary, &run.Summary); err != nil {
		return nil, fmt.Errorf("decode summary of run %s: %w", record.RunID, err)
	}
	return run, nil
}

// IsNotFound reports whether err means the run does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, repositories.ErrRunNotFound)
}
