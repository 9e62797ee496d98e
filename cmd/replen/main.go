package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/jayjaydesai/WorkBot/pkg/interfaces/cli/commands"
	"github.com/jayjaydesai/WorkBot/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "generate" {
		if err := runGenerate(ctx, os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Command line flags
	var (
		input       = flag.String("input", "", "Path to an input CSV or XLSX file (more may follow as arguments)")
		workflow    = flag.String("workflow", "replen", "Workflow profile: replen, greplen")
		sheet       = flag.String("sheet", "", "Worksheet to read from xlsx inputs")
		outputDir   = flag.String("output", "", "Output directory for results (optional)")
		format      = flag.String("format", "text", "Output format: text, json, csv, xlsx")
		workers     = flag.Int("workers", 0, "Item groups processed in parallel (0 = one per CPU)")
		storePath   = flag.String("store", "", "Persist runs to this SQLite database")
		artifactDir = flag.String("artifacts", "", "Archive result workbooks under this directory")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		help        = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	inputs := flag.Args()
	if *input != "" {
		inputs = append([]string{*input}, inputs...)
	}

	// Create command configuration
	config := commands.Config{
		Inputs:      inputs,
		Workflow:    *workflow,
		Sheet:       *sheet,
		OutputDir:   *outputDir,
		Format:      *format,
		Workers:     *workers,
		StorePath:   *storePath,
		ArtifactDir: *artifactDir,
		Verbose:     *verbose,
		Help:        *help,
	}

	log := logger.Must(logger.NewConsole(*verbose))
	defer func() { _ = log.Sync() }()

	// Create and execute command
	cmd := commands.NewReplenCommand(config, log)
	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		workflow  = fs.String("workflow", "replen", "Workflow whose input layout to generate")
		items     = fs.Int("items", 0, "Number of item groups to generate")
		maxLines  = fs.Int("max-lines", 4, "Maximum lines per item group")
		coverage  = fs.Float64("coverage", 0.8, "Pool as a fraction of group quantity")
		outputDir = fs.String("output", ".", "Output directory for the generated file")
		seed      = fs.Int64("seed", 0, "Random seed for reproducible generation")
		verbose   = fs.Bool("verbose", false, "Enable verbose output")
		help      = fs.Bool("help", false, "Show help message")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cmd := commands.NewGenerateCommand(commands.GenerateConfig{
		Workflow:  *workflow,
		Items:     *items,
		MaxLines:  *maxLines,
		Coverage:  *coverage,
		OutputDir: *outputDir,
		Seed:      *seed,
		Help:      *help,
		Verbose:   *verbose,
	})
	_, err := cmd.Execute(ctx)
	return err
}
