package tabular

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

func sampleTable() *entities.Table {
	return &entities.Table{
		Source: "sample",
		Lines: []*entities.Line{
			{
				Item: "A", Identifier: "LP1", PostedQty: decimal.NewFromInt(10), AvailableQty: decimal.NewFromInt(10),
				Pool: decimal.NewFromInt(15), Demand: decimal.NewFromInt(15), AllocatedQty: decimal.NewFromInt(10),
				Ratio: decimal.NewFromInt(100), Decision: entities.GoodToGo, Note: "Full Allocation",
				FinalQuantity: decimal.NewFromInt(10), Flags: entities.FlagExactPallet,
			},
			{
				Item: "A", Identifier: "LP2", OriginalIndex: 1, PostedQty: decimal.NewFromInt(10), AvailableQty: decimal.NewFromInt(10),
				Pool: decimal.NewFromInt(15), Demand: decimal.NewFromInt(15), AllocatedQty: decimal.NewFromInt(5),
				Ratio: decimal.NewFromInt(200), Decision: entities.NotToUse, Note: "No Allocation",
			},
		},
	}
}

func TestDetectFormat(t *testing.T) {
	testCases := []struct {
		name     string
		expected Format
		wantErr  bool
	}{
		{"stock.csv", FormatCSV, false},
		{"REPORT.XLSX", FormatXLSX, false},
		{"macro.xlsm", FormatXLSX, false},
		{"notes.pdf", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectFormat(tc.name)
			if (err != nil) != tc.wantErr {
				t.Fatalf("Expected error=%t, got %v", tc.wantErr, err)
			}
			if got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestLoader_CSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock.csv")
	content := "\ufeffItem Number, Licence Plate,Posted Quantity\nA,LP1,10\nB,LP2\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	raw, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if raw.Source != "stock.csv" {
		t.Errorf("Expected source stock.csv, got %s", raw.Source)
	}
	if raw.Header[0] != "Item Number" || raw.Header[1] != "Licence Plate" {
		t.Errorf("Expected BOM and leading space stripped, got %q", raw.Header)
	}
	if len(raw.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(raw.Rows))
	}
	if raw.Cell(1, 2) != "" {
		t.Errorf("Expected short row to read as blank, got %q", raw.Cell(1, 2))
	}
}

func TestLoader_EmptyFile(t *testing.T) {
	_, err := NewLoader().Load(strings.NewReader(""), "empty.csv", FormatCSV)
	if !errors.Is(err, entities.ErrEmptyInput) {
		t.Errorf("Expected EmptyInputError, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d lines", len(lines))
	}
	if lines[1] != "A,LP1,10,10,,15,15,10,100.00,Good to Go,Full Allocation,,10" {
		t.Errorf("Unexpected first row %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "200.00,Not to Use,No Allocation,,") {
		t.Errorf("Expected blank final quantity for rejected line, got %q", lines[2])
	}
}

func TestWriteXLSX_ReadsBack(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleTable(), ""); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	loader := &Loader{Sheet: "Allocation"}
	raw, err := loader.Load(bytes.NewReader(buf.Bytes()), "out.xlsx", FormatXLSX)
	if err != nil {
		t.Fatalf("Unexpected error reading workbook back: %v", err)
	}
	if strings.Join(raw.Header, ",") != strings.Join(OutputHeader, ",") {
		t.Errorf("Unexpected header %v", raw.Header)
	}
	if len(raw.Rows) != 2 || raw.Cell(0, 9) != "Good to Go" || raw.Cell(1, 10) != "No Allocation" {
		t.Errorf("Unexpected rows %v", raw.Rows)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleTable()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var decoded []JSONLine
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Expected valid JSON: %v", err)
	}
	if decoded[0].Flags != "ExactPallet" || decoded[1].OriginalIndex != 1 || decoded[1].FinalQuantity != "" {
		t.Errorf("Unexpected JSON lines %+v", decoded)
	}
}
