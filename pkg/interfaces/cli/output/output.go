package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/jayjaydesai/WorkBot/pkg/application/dto"
	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/tabular"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Sheet     string
	Verbose   bool
	// Out receives stdout output; nil means os.Stdout
	Out io.Writer
}

// Formats lists the supported output formats
var Formats = []string{"text", "json", "csv", "xlsx"}

// Generate creates output in the specified format and returns the path of any file written
func Generate(result *dto.RunResult, config Config) (string, error) {
	if config.Out == nil {
		config.Out = os.Stdout
	}
	switch config.Format {
	case "text", "":
		return "", generateTextOutput(result, config)
	case "json":
		return generateJSONOutput(result, config)
	case "csv":
		return generateCSVOutput(result, config)
	case "xlsx":
		return generateXLSXOutput(result, config)
	default:
		return "", fmt.Errorf("unsupported output format: %s (available: %s)", config.Format, strings.Join(Formats, ", "))
	}
}

// FileName derives the output file name from the workflow and the input name
func FileName(result *dto.RunResult, ext string) string {
	base := "input"
	if result.Table != nil && result.Table.Source != "" {
		base = strings.TrimSuffix(filepath.Base(result.Table.Source), filepath.Ext(result.Table.Source))
	}
	return fmt.Sprintf("%s_%s_allocation.%s", base, result.Workflow, ext)
}

// generateTextOutput prints the summary and the lines with Good to Go first
func generateTextOutput(result *dto.RunResult, config Config) error {
	out := config.Out
	source := ""
	if result.Table != nil {
		source = result.Table.Source
	}
	fmt.Fprintf(out, "%s allocation: %s\n", strings.ToUpper(result.Workflow), source)
	fmt.Fprintf(out, "Run: %s (%v)\n\n", result.RunID, result.Duration)

	stats := result.Stats
	fmt.Fprintf(out, "Lines: %d  Groups: %d  Failed groups: %d\n", stats.Lines, stats.Groups, stats.FailedGroups)
	fmt.Fprintf(out, "Good to Go: %d  Not to Use: %d  Undecided: %d\n", stats.GoodToGo, stats.NotToUse, stats.Undecided)
	if n := result.CoercedRows(); n > 0 {
		fmt.Fprintf(out, "Rows with non-numeric quantities read as 0: %d\n", n)
	}
	if n := result.SkippedRows(); n > 0 {
		fmt.Fprintf(out, "Blank rows skipped: %d\n", n)
	}
	fmt.Fprintln(out)

	if result.Table != nil && len(result.Table.Lines) > 0 {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ITEM\tIDENTIFIER\tPOSTED\tALLOCATED\tRATIO\tDECISION\tNOTE\tFINAL")
		for _, line := range result.Table.ByDecision() {
			rec := tabular.Record(line)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				rec[0], rec[1], rec[2], rec[7], rec[8], rec[9], rec[10], rec[12])
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	for _, groupErr := range result.GroupErrors {
		fmt.Fprintf(out, "Group error: %v\n", groupErr)
	}
	if config.Verbose {
		for _, w := range result.Warnings() {
			fmt.Fprintf(out, "Warning: %s\n", w)
		}
	}
	return nil
}

type jsonDocument struct {
	Summary  dto.RunSummary     `json:"summary"`
	Warnings []string           `json:"warnings,omitempty"`
	Errors   []string           `json:"group_errors,omitempty"`
	Lines    []tabular.JSONLine `json:"lines"`
}

func generateJSONOutput(result *dto.RunResult, config Config) (string, error) {
	doc := jsonDocument{Summary: result.Summary(), Lines: tabular.JSONLines(result.Table)}
	for _, w := range result.Warnings() {
		doc.Warnings = append(doc.Warnings, w.String())
	}
	for _, e := range result.GroupErrors {
		doc.Errors = append(doc.Errors, e.Error())
	}
	jsonData, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err := fmt.Fprintln(config.Out, string(jsonData))
		return "", err
	}
	return writeFile(config, FileName(result, "json"), func(w io.Writer) error {
		_, err := w.Write(jsonData)
		return err
	})
}

func generateCSVOutput(result *dto.RunResult, config Config) (string, error) {
	if config.OutputDir == "" {
		return "", tabular.WriteCSV(config.Out, result.Table)
	}
	return writeFile(config, FileName(result, "csv"), func(w io.Writer) error {
		return tabular.WriteCSV(w, result.Table)
	})
}

func generateXLSXOutput(result *dto.RunResult, config Config) (string, error) {
	if config.OutputDir == "" {
		return "", fmt.Errorf("output directory required for xlsx format")
	}
	return writeFile(config, FileName(result, "xlsx"), func(w io.Writer) error {
		return tabular.WriteXLSX(w, result.Table, config.Sheet)
	})
}

func writeFile(config Config, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, name)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filename, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	if config.Verbose {
		fmt.Fprintf(config.Out, "Results saved to: %s\n", filename)
	}
	return filename, nil
}
