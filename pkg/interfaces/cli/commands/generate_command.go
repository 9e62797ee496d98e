package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jayjaydesai/WorkBot/pkg/application/services/workflow"
)

// GenerateConfig holds configuration for synthetic input generation
type GenerateConfig struct {
	Workflow  string  // replen or greplen
	Items     int     // Number of item groups to generate
	MaxLines  int     // Maximum lines per item group
	Coverage  float64 // Pool as a fraction of the group's total quantity (e.g., 0.5 = half coverage)
	OutputDir string  // Output directory for the generated file
	Seed      int64   // Random seed for reproducible generation
	Help      bool    // Show help
	Verbose   bool    // Verbose output
}

// GenerateCommand writes a synthetic input sheet for a workflow
type GenerateCommand struct {
	config GenerateConfig
	rand   *rand.Rand
	out    io.Writer
}

// NewGenerateCommand creates a new generate command
func NewGenerateCommand(config GenerateConfig) *GenerateCommand {
	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if config.MaxLines <= 0 {
		config.MaxLines = 4
	}

	return &GenerateCommand{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
		out:    os.Stdout,
	}
}

// Execute runs the generate command and returns the path of the written file
func (cmd *GenerateCommand) Execute(_ context.Context) (string, error) {
	if cmd.config.Help {
		cmd.printHelp()
		return "", nil
	}
	if cmd.config.Items <= 0 {
		return "", fmt.Errorf("items must be positive, got %d", cmd.config.Items)
	}
	if cmd.config.Coverage < 0 {
		return "", fmt.Errorf("coverage must not be negative, got %v", cmd.config.Coverage)
	}
	wf, err := workflow.Lookup(cmd.config.Workflow)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cmd.config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(cmd.config.OutputDir, fmt.Sprintf("%s_%d.csv", wf.Name, cmd.config.Items))
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	var rows int
	switch wf.Name {
	case "replen":
		rows, err = cmd.writeReplen(writer)
	default:
		rows, err = cmd.writeGreplen(writer)
	}
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	if cmd.config.Verbose {
		fmt.Fprintf(cmd.out, "Generated %d lines over %d items in %s\n", rows, cmd.config.Items, path)
	}
	return path, nil
}

// lineCount draws the size of one item group
func (cmd *GenerateCommand) lineCount() int {
	return 1 + cmd.rand.Intn(cmd.config.MaxLines)
}

// pool scales a group total by the coverage factor
func (cmd *GenerateCommand) pool(total int) int {
	return int(float64(total)*cmd.config.Coverage + 0.5)
}

// writeReplen emits bulk pallets; diff is repeated on every pallet of the item
func (cmd *GenerateCommand) writeReplen(w *csv.Writer) (int, error) {
	if err := w.Write([]string{"item number", "licence plate", "posted quantity", "diff", "level"}); err != nil {
		return 0, err
	}
	rows := 0
	for i := 0; i < cmd.config.Items; i++ {
		item := fmt.Sprintf("ITEM%05d", i+1)
		n := cmd.lineCount()
		posted := make([]int, n)
		total := 0
		for j := range posted {
			posted[j] = 5 * (1 + cmd.rand.Intn(20))
			total += posted[j]
		}
		diff := strconv.Itoa(cmd.pool(total))
		for j := range posted {
			rows++
			level := string(rune('A' + cmd.rand.Intn(6)))
			record := []string{item, fmt.Sprintf("LP%07d", rows), strconv.Itoa(posted[j]), diff, level}
			if err := w.Write(record); err != nil {
				return rows, err
			}
		}
	}
	return rows, nil
}

// writeGreplen emits backorder lines; about a third carry a purchase order ETA
func (cmd *GenerateCommand) writeGreplen(w *csv.Writer) (int, error) {
	header := []string{"part number", "sales back order", "backorder", "actual stock", "number of days eta", "eta qty differencetotal"}
	if err := w.Write(header); err != nil {
		return 0, err
	}
	rows := 0
	for i := 0; i < cmd.config.Items; i++ {
		part := fmt.Sprintf("PART%05d", i+1)
		n := cmd.lineCount()
		backorders := make([]int, n)
		total := 0
		for j := range backorders {
			backorders[j] = 1 + cmd.rand.Intn(50)
			total += backorders[j]
		}
		stock := strconv.Itoa(cmd.pool(total))
		etaDays, etaSurplus := "", ""
		if cmd.rand.Float64() < 0.3 {
			etaDays = strconv.Itoa(cmd.rand.Intn(30))
			etaSurplus = strconv.Itoa(cmd.rand.Intn(70) - 20)
		}
		for j := range backorders {
			rows++
			record := []string{part, fmt.Sprintf("SBO%07d", rows), strconv.Itoa(backorders[j]), stock, etaDays, etaSurplus}
			if err := w.Write(record); err != nil {
				return rows, err
			}
		}
	}
	return rows, nil
}

func (cmd *GenerateCommand) printHelp() {
	fmt.Fprintln(cmd.out, `Synthetic input generator

USAGE:
    replen generate [OPTIONS]

OPTIONS:
    -workflow <name>    Workflow whose input layout to generate: greplen, replen (default: replen)
    -items <N>          Number of item groups to generate (required)
    -max-lines <N>      Maximum lines per item group (default: 4)
    -coverage <F>       Pool as a fraction of group quantity (e.g., 0.5 = half coverage) (default: 0.8)
    -output <DIR>       Output directory for the generated file (default: .)
    -seed <N>           Random seed for reproducible generation (optional)
    -verbose            Enable verbose output
    -help               Show this help message

EXAMPLES:
    # Generate a small reproducible REPLEN sheet
    replen generate -items 50 -seed 42 -output ./fixtures

    # Generate a large GREPLEN sheet with scarce stock
    replen generate -workflow greplen -items 20000 -coverage 0.4 -output ./load`)
}
