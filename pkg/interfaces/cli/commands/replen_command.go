package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jayjaydesai/WorkBot/pkg/application/dto"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/archive"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/engine"
	"github.com/jayjaydesai/WorkBot/pkg/application/services/workflow"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/blob"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/repositories/sqlstore"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/tabular"
	"github.com/jayjaydesai/WorkBot/pkg/interfaces/cli/output"
)

// Config holds configuration for the replen command
type Config struct {
	Inputs    []string
	Workflow  string
	Sheet     string
	OutputDir string
	Format    string
	Workers   int
	// StorePath persists every run to a SQLite database when set
	StorePath string
	// ArtifactDir uploads each result workbook to a filesystem blob store when set
	ArtifactDir string
	Verbose     bool
	Help        bool
}

// ReplenCommand loads input sheets, runs the allocation engine and renders the results
type ReplenCommand struct {
	config Config
	logger *zap.Logger
	out    io.Writer
}

// NewReplenCommand creates a new replen command with the given configuration
func NewReplenCommand(config Config, logger *zap.Logger) *ReplenCommand {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplenCommand{config: config, logger: logger, out: os.Stdout}
}

// SetOutput redirects everything the command prints
func (c *ReplenCommand) SetOutput(w io.Writer) {
	c.out = w
}

// Execute runs the command. Every input is processed even when an earlier one fails;
// the returned error lists the inputs that failed.
func (c *ReplenCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if err := c.validateInputs(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	wf, err := workflow.Lookup(c.config.Workflow)
	if err != nil {
		return err
	}

	archiver, closeStore, err := c.openArchive(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	loader := tabular.NewLoader()
	loader.Sheet = c.config.Sheet

	var (
		inputs   []dto.RunInput
		failures []string
	)
	for _, path := range c.config.Inputs {
		raw, err := loader.LoadFile(path)
		if err != nil {
			c.logger.Error("input rejected", zap.String("input", path), zap.Error(err))
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		inputs = append(inputs, dto.RunInput{Workflow: wf.Name, Raw: raw})
	}

	svc := engine.NewService(engine.EngineConfig{Workers: c.config.Workers}, nil, c.logger)

	startTime := time.Now()
	batch := svc.RunBatch(ctx, inputs)
	c.logger.Debug("batch completed", zap.Int("inputs", len(inputs)), zap.Duration("elapsed", time.Since(startTime)))

	for _, item := range batch {
		if item.Err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", item.Source, item.Err))
			continue
		}
		if _, err := output.Generate(item.Result, output.Config{
			Format:    c.config.Format,
			OutputDir: c.config.OutputDir,
			Sheet:     c.config.Sheet,
			Verbose:   c.config.Verbose,
			Out:       c.out,
		}); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", item.Source, err))
			continue
		}
		if archiver != nil {
			summary, err := archiver.Save(ctx, item.Result)
			if err != nil {
				failures = append(failures, fmt.Sprintf("%s: %v", item.Source, err))
				continue
			}
			if c.config.Verbose && summary.Artifact != "" {
				fmt.Fprintf(c.out, "Workbook archived to: %s\n", summary.Artifact)
			}
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d inputs failed:\n  %s",
			len(failures), len(c.config.Inputs), strings.Join(failures, "\n  "))
	}
	return nil
}

func (c *ReplenCommand) openArchive(ctx context.Context) (*archive.Service, func(), error) {
	noop := func() {}
	if c.config.StorePath == "" {
		if c.config.ArtifactDir != "" {
			return nil, noop, errors.New("-artifacts requires -store")
		}
		return nil, noop, nil
	}
	repo, err := sqlstore.OpenSQLite(ctx, c.config.StorePath)
	if err != nil {
		return nil, noop, err
	}
	var store blob.Store
	if c.config.ArtifactDir != "" {
		if store, err = blob.NewFilesystem(c.config.ArtifactDir); err != nil {
			repo.Close()
			return nil, noop, err
		}
	}
	return archive.NewService(repo, store, c.logger), func() { repo.Close() }, nil
}

// validateInputs validates the command configuration
func (c *ReplenCommand) validateInputs() error {
	if len(c.config.Inputs) == 0 {
		return errors.New("at least one input file is required")
	}
	if c.config.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.config.Workers)
	}
	for _, path := range c.config.Inputs {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("input file not found: %s", path)
		}
	}
	return nil
}

// showHelp displays the help message
func (c *ReplenCommand) showHelp() {
	fmt.Fprintf(c.out, `replen - grouped stock allocation for warehouse replenishment

USAGE:
    replen [options] <input.csv|input.xlsx> ...
    replen generate [options]

OPTIONS:
    -workflow <name>    Workflow profile: %s (default: replen)
    -sheet <name>       Worksheet to read from xlsx inputs (default: first sheet)
    -format <fmt>       Output format: %s (default: text)
    -output <dir>       Output directory for results (required for xlsx)
    -workers <n>        Item groups processed in parallel (default: one per CPU)
    -store <file>       Persist runs to a SQLite database
    -artifacts <dir>    Archive result workbooks under this directory (requires -store)
    -verbose            Enable verbose output
    -help               Show this help message

REPLEN INPUT COLUMNS:
    item number, licence plate, posted quantity, diff [, level, available quantity, decision, note]

GREPLEN INPUT COLUMNS:
    part number, sales back order, backorder, actual stock
    [, number of days eta, eta qty differencetotal, decision, note]

EXAMPLES:
    replen -format xlsx -output out/ bulk_locations.xlsx
    replen -workflow greplen -format json backorders.csv
    replen generate -workflow greplen -items 500 -output fixtures/
`, strings.Join(workflow.Names(), ", "), strings.Join(output.Formats, ", "))
}
