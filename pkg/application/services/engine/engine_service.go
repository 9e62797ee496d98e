package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jayjaydesai/WorkBot/pkg/application/dto"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/normalizer"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/shared"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/workflow"
	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
	"github.com/jayjaydesai/WorkBot/pkg/domain/services"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/events"
)

// EngineConfig holds configuration for the allocation engine
type EngineConfig struct {
	// Workers bounds how many item groups are processed at once (0 = GOMAXPROCS)
	Workers int
}

// Service runs workflows over tables: Aggregate, Allocate, Rules, Classify, Annotate per item group
type Service struct {
	config     EngineConfig
	normalizer *normalizer.Normalizer
	publisher  events.Publisher
	logger     *zap.Logger

	// beforeGroup runs inside the group's failure boundary; tests use it to inject faults
	beforeGroup func(*entities.ItemGroup)
}

// NewService creates an engine; nil publisher and logger are replaced by no-ops
func NewService(config EngineConfig, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	return &Service{
		config:     config,
		normalizer: normalizer.NewNormalizer(logger.Named("normalizer")),
		publisher:  publisher,
		logger:     logger,
	}
}

// groupResult is what one worker reports back for its group
type groupResult struct {
	outcome services.ClassifyOutcome
	rules   map[string]int
	err     error
}

// Run normalizes the raw table with the named workflow and processes it.
// SchemaError and EmptyInputError abort the run; group failures do not.
func (s *Service) Run(ctx context.Context, input dto.RunInput) (*dto.RunResult, error) {
	wf, err := workflow.Lookup(input.Workflow)
	if err != nil {
		return nil, err
	}
	if input.Raw == nil {
		return nil, &entities.EmptyInputError{}
	}

	runID := uuid.NewString()
	table, err := s.normalizer.Normalize(input.Raw, wf)
	if err != nil {
		s.publish(events.NewRunFailedEvent(runID, events.RunFailed{
			Workflow: wf.Name, Source: input.Raw.Source, Error: err.Error(),
		}))
		s.logger.Warn("run rejected",
			zap.String("run_id", runID),
			zap.String("workflow", wf.Name),
			zap.String("source", input.Raw.Source),
			zap.Error(err))
		return nil, err
	}
	return s.process(ctx, runID, wf, table)
}

// RunTable processes an already typed table. The table is copied, never modified.
func (s *Service) RunTable(ctx context.Context, wf *workflow.Workflow, table *entities.Table) (*dto.RunResult, error) {
	if table == nil || len(table.Lines) == 0 {
		source := ""
		if table != nil {
			source = table.Source
		}
		return nil, &entities.EmptyInputError{Source: source}
	}
	return s.process(ctx, uuid.NewString(), wf, table.Clone())
}

// RunBatch runs every input independently; a failing input is reported in its item only
func (s *Service) RunBatch(ctx context.Context, inputs []dto.RunInput) []dto.BatchItem {
	items := make([]dto.BatchItem, len(inputs))
	for i, input := range inputs {
		if input.Raw != nil {
			items[i].Source = input.Raw.Source
		}
		if err := ctx.Err(); err != nil {
			items[i].Err = err
			continue
		}
		items[i].Result, items[i].Err = s.Run(ctx, input)
	}
	return items
}

func (s *Service) process(ctx context.Context, runID string, wf *workflow.Workflow, table *entities.Table) (*dto.RunResult, error) {
	start := time.Now()
	groups := entities.GroupLines(table.Lines)

	s.publish(events.NewRunStartedEvent(runID, events.RunStarted{
		Workflow: wf.Name, Source: table.Source, Lines: len(table.Lines), Groups: len(groups),
	}))

	results := make([]groupResult, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.processGroup(wf, group)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.publish(events.NewRunFailedEvent(runID, events.RunFailed{
			Workflow: wf.Name, Source: table.Source, Error: err.Error(),
		}))
		return nil, fmt.Errorf("run %s cancelled: %w", runID, err)
	}

	result := &dto.RunResult{
		RunID:       runID,
		Workflow:    wf.Name,
		Table:       table,
		Allocations: shared.NewAllocationMap(),
		StartedAt:   start,
		Stats: dto.RunStats{
			Lines:       len(table.Lines),
			Groups:      len(groups),
			RuleDecided: make(map[string]int),
		},
	}

	for i, group := range groups {
		res := results[i]
		result.Allocations.Set(group.Item, shared.SummarizeGroup(group, res.err != nil))
		if res.err != nil {
			groupErr := &entities.GroupError{Item: group.Item, Err: res.err}
			result.GroupErrors = append(result.GroupErrors, groupErr)
			result.Stats.FailedGroups++
			s.logger.Warn("group failed",
				zap.String("run_id", runID),
				zap.String("item", string(group.Item)),
				zap.Error(res.err))
			s.publish(events.NewGroupFailedEvent(runID, events.GroupFailed{
				Workflow: wf.Name, Item: string(group.Item), Error: res.err.Error(),
			}))
			continue
		}
		if res.outcome.Fallback {
			result.Stats.Fallbacks++
		}
		for name, n := range res.rules {
			result.Stats.RuleDecided[name] += n
		}
		s.publish(events.NewGroupAllocatedEvent(runID, events.GroupAllocated{
			Workflow:  wf.Name,
			Item:      string(group.Item),
			Lines:     len(group.Lines),
			GoodToGo:  group.CountDecision(entities.GoodToGo),
			NotToUse:  group.CountDecision(entities.NotToUse),
			Fallback:  res.outcome.Fallback,
			RuleCount: res.rules,
		}))
	}

	for _, line := range table.Lines {
		switch line.Decision {
		case entities.GoodToGo:
			result.Stats.GoodToGo++
		case entities.NotToUse:
			result.Stats.NotToUse++
		default:
			result.Stats.Undecided++
		}
	}

	table.SortByOriginalIndex()
	result.Duration = time.Since(start)

	s.publish(events.NewRunCompletedEvent(runID, events.RunCompleted{
		Workflow:     wf.Name,
		Lines:        result.Stats.Lines,
		Groups:       result.Stats.Groups,
		FailedGroups: result.Stats.FailedGroups,
		CoercedRows:  table.CoercedRows(),
		Duration:     result.Duration,
	}))
	s.logger.Info("run completed",
		zap.String("run_id", runID),
		zap.String("workflow", wf.Name),
		zap.String("source", table.Source),
		zap.Int("lines", result.Stats.Lines),
		zap.Int("groups", result.Stats.Groups),
		zap.Int("failed_groups", result.Stats.FailedGroups),
		zap.Int("coerced_rows", table.CoercedRows()),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// processGroup takes one group through every step. Errors and panics stay inside the group:
// its lines are returned Undecided with an error note.
func (s *Service) processGroup(wf *workflow.Workflow, group *entities.ItemGroup) (res groupResult) {
	defer func() {
		if r := recover(); r != nil {
			res = groupResult{err: fmt.Errorf("panic: %v", r)}
		}
		if res.err != nil {
			for _, line := range group.Lines {
				line.Reset()
				line.Err = res.err
				services.Annotate(line, wf.Annotation)
			}
		}
	}()

	for _, line := range group.Lines {
		line.Reset()
	}
	if s.beforeGroup != nil {
		s.beforeGroup(group)
	}

	if err := services.Aggregate(group, wf.Aggregation); err != nil {
		return groupResult{err: err}
	}
	services.Allocate(services.NewAllocationContext(group))
	services.ApplyRatios(group, wf.Classifier.Mode)
	rules := services.ApplyRules(group, wf.Rules)
	outcome := services.Classify(group, wf.Classifier)
	for _, line := range group.Lines {
		services.Annotate(line, wf.Annotation)
	}
	return groupResult{outcome: outcome, rules: rules}
}

func (s *Service) publish(event events.Event) {
	if err := s.publisher.AppendEvent(event.StreamID(), event); err != nil {
		s.logger.Warn("event publish failed", zap.String("type", event.Type()), zap.Error(err))
	}
}
