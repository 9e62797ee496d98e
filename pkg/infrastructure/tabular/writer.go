package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// OutputHeader is the column order of written result tables
var OutputHeader = []string{
	"item", "identifier", "posted_quantity", "available_quantity", "priority",
	"pool", "demand", "allocated_quantity", "ratio", "decision", "note", "reason", "final_quantity",
}

// Record renders one line in OutputHeader order
func Record(line *entities.Line) []string {
	final := ""
	if line.Decision == entities.GoodToGo {
		final = line.FinalQuantity.String()
	}
	return []string{
		string(line.Item),
		line.Identifier,
		line.PostedQty.String(),
		line.AvailableQty.String(),
		line.Priority.String(),
		line.Pool.String(),
		line.Demand.String(),
		line.AllocatedQty.String(),
		line.Ratio.StringFixed(2),
		line.Decision.String(),
		line.Note,
		line.Reason,
		final,
	}
}

// WriteCSV writes the table with a header row
func WriteCSV(w io.Writer, table *entities.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(OutputHeader); err != nil {
		return err
	}
	for _, line := range table.Lines {
		if err := writer.Write(Record(line)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes the table as a single sheet workbook
func WriteXLSX(w io.Writer, table *entities.Table, sheet string) error {
	book := excelize.NewFile()
	defer book.Close()

	if sheet == "" {
		sheet = "Allocation"
	}
	if err := book.SetSheetName(book.GetSheetName(0), sheet); err != nil {
		return err
	}

	if err := setRow(book, sheet, 1, OutputHeader); err != nil {
		return err
	}
	for i, line := range table.Lines {
		if err := setRow(book, sheet, i+2, Record(line)); err != nil {
			return err
		}
	}
	if err := book.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	_, err := book.WriteTo(w)
	return err
}

func setRow(book *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := book.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return nil
}

// JSONLine is the JSON shape of a result line
type JSONLine struct {
	Item              string `json:"item"`
	Identifier        string `json:"identifier"`
	OriginalIndex     int    `json:"original_index"`
	PostedQuantity    string `json:"posted_quantity"`
	AvailableQuantity string `json:"available_quantity"`
	Pool              string `json:"pool"`
	Demand            string `json:"demand"`
	AllocatedQuantity string `json:"allocated_quantity"`
	Ratio             string `json:"ratio"`
	Decision          string `json:"decision"`
	Note              string `json:"note"`
	Reason            string `json:"reason,omitempty"`
	FinalQuantity     string `json:"final_quantity,omitempty"`
	Flags             string `json:"flags,omitempty"`
}

// JSONLines converts the table into its JSON shape
func JSONLines(table *entities.Table) []JSONLine {
	out := make([]JSONLine, len(table.Lines))
	for i, line := range table.Lines {
		rec := Record(line)
		out[i] = JSONLine{
			Item:              rec[0],
			Identifier:        rec[1],
			OriginalIndex:     line.OriginalIndex,
			PostedQuantity:    rec[2],
			AvailableQuantity: rec[3],
			Pool:              rec[5],
			Demand:            rec[6],
			AllocatedQuantity: rec[7],
			Ratio:             rec[8],
			Decision:          rec[9],
			Note:              rec[10],
			Reason:            rec[11],
			FinalQuantity:     rec[12],
			Flags:             line.Flags.String(),
		}
	}
	return out
}

// WriteJSON writes the table as an indented JSON array
func WriteJSON(w io.Writer, table *entities.Table) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(JSONLines(table))
}
