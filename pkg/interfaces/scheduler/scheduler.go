package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jayjaydesai/WorkBot/pkg/application/dto"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/tabular"
)

const jobTimeout = 10 * time.Minute

// Runner executes one allocation run
type Runner interface {
	Run(ctx context.Context, input dto.RunInput) (*dto.RunResult, error)
}

// Saver persists a finished run
type Saver interface {
	Save(ctx context.Context, result *dto.RunResult) (dto.RunSummary, error)
}

// Job re-runs a workflow on a fixed input file
type Job struct {
	Schedule string
	Input    string
	Workflow string
}

// Scheduler manages scheduled runs.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	saver  Saver
	loader *tabular.Loader
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance. saver may be nil.
func NewScheduler(runner Runner, saver Saver, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		saver:  saver,
		loader: tabular.NewLoader(),
		logger: logger,
	}
}

// Add registers a job using the standard five field cron syntax
func (s *Scheduler) Add(job Job) error {
	if job.Input == "" {
		return fmt.Errorf("scheduled job needs an input file")
	}
	if _, err := s.cron.AddFunc(job.Schedule, func() { s.runJob(job) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", job.Schedule, err)
	}
	s.logger.Info("run scheduled",
		zap.String("schedule", job.Schedule),
		zap.String("workflow", job.Workflow),
		zap.String("input", job.Input))
	return nil
}

// Start starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("jobs", len(s.cron.Entries())))
	s.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := s.RunNow(ctx, job); err != nil {
		s.logger.Error("scheduled run failed",
			zap.String("workflow", job.Workflow),
			zap.String("input", job.Input),
			zap.Error(err))
	}
}

// RunNow executes a job immediately
func (s *Scheduler) RunNow(ctx context.Context, job Job) (*dto.RunResult, error) {
	raw, err := s.loader.LoadFile(job.Input)
	if err != nil {
		return nil, err
	}
	result, err := s.runner.Run(ctx, dto.RunInput{Workflow: job.Workflow, Raw: raw})
	if err != nil {
		return nil, err
	}
	if s.saver != nil {
		if _, err := s.saver.Save(ctx, result); err != nil {
			return result, err
		}
	}
	s.logger.Info("scheduled run completed",
		zap.String("run_id", result.RunID),
		zap.Int("good_to_go", result.Stats.GoodToGo),
		zap.Int("failed_groups", result.Stats.FailedGroups))
	return result, nil
}
