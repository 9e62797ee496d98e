package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// Format is a supported sheet encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat picks the format from a file name's extension
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported file type %q (expected .csv or .xlsx)", filepath.Ext(name))
	}
}

// Loader handles loading raw sheets from CSV and XLSX files
type Loader struct {
	// Sheet selects the worksheet of an XLSX file; empty means the first sheet
	Sheet string
}

// NewLoader creates a new loader reading the first worksheet of workbooks
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile reads a sheet from disk, choosing the format from the extension
func (l *Loader) LoadFile(filename string) (*entities.RawTable, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %s: %w", filename, err)
	}
	defer file.Close()

	return l.Load(file, filepath.Base(filename), format)
}

// Load reads a sheet from r; source names the input in errors
func (l *Loader) Load(r io.Reader, source string, format Format) (*entities.RawTable, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = l.readXLSX(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}

	if len(records) == 0 {
		return nil, &entities.EmptyInputError{Source: source}
	}
	return &entities.RawTable{
		Source: source,
		Header: records[0],
		Rows:   records[1:],
	}, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func (l *Loader) readXLSX(r io.Reader) ([][]string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer book.Close()

	sheet := l.Sheet
	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	return book.GetRows(sheet)
}
