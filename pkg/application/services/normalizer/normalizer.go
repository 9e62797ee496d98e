package normalizer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jayjaydesai/WorkBot/pkg/application/services/workflow"
	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// Normalizer turns raw sheets into typed line tables for a workflow
type Normalizer struct {
	logger *zap.Logger
}

// NewNormalizer creates a normalizer; a nil logger discards output
func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// binding is a resolved column: the field, its header position and the header text
type binding struct {
	field  workflow.Field
	index  int
	header string
}

// NormalizeName folds a header for matching: lower case, with spaces, slashes, dashes,
// underscores and dots all treated as one separator.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '_', '-', '.', '\t':
			return ' '
		}
		return r
	}, name)
	return strings.Join(strings.Fields(name), " ")
}

// resolve maps the workflow's columns onto the header.
// The first missing required column is reported as a SchemaError.
func resolve(source string, header []string, wf *workflow.Workflow) (map[workflow.Field]binding, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeName(h)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	bound := make(map[workflow.Field]binding, len(wf.Columns))
	for _, col := range wf.Columns {
		found := false
		for _, name := range col.Names {
			if idx, ok := positions[NormalizeName(name)]; ok {
				bound[col.Field] = binding{field: col.Field, index: idx, header: header[idx]}
				found = true
				break
			}
		}
		if !found && col.Required {
			return nil, &entities.SchemaError{Source: source, Column: col.Names[0]}
		}
	}
	return bound, nil
}

// Normalize resolves columns, coerces quantities and builds one Line per data row.
// Blank rows produce no Line, so the table can be shorter than the sheet; their row numbers
// are kept in SkippedRows. A sheet without data rows is an EmptyInputError.
func (n *Normalizer) Normalize(raw *entities.RawTable, wf *workflow.Workflow) (*entities.Table, error) {
	bound, err := resolve(raw.Source, raw.Header, wf)
	if err != nil {
		return nil, err
	}

	table := &entities.Table{Source: raw.Source}
	for r := range raw.Rows {
		// sheet row number: header is row 1
		rowNum := r + 2
		if blankRow(raw.Rows[r]) {
			table.SkippedRows = append(table.SkippedRows, rowNum)
			continue
		}
		line, err := n.buildLine(raw, r, rowNum, len(table.Lines), bound, wf, table)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", raw.Source, rowNum, err)
		}
		table.Lines = append(table.Lines, line)
	}

	if len(table.Lines) == 0 {
		return nil, &entities.EmptyInputError{Source: raw.Source}
	}
	if len(table.Warnings) > 0 {
		n.logger.Warn("non-numeric quantities coerced to 0",
			zap.String("source", raw.Source),
			zap.Int("cells", len(table.Warnings)),
			zap.Int("rows", table.CoercedRows()))
	}
	return table, nil
}

func (n *Normalizer) buildLine(
	raw *entities.RawTable,
	r, rowNum, index int,
	bound map[workflow.Field]binding,
	wf *workflow.Workflow,
	table *entities.Table,
) (*entities.Line, error) {
	text := func(f workflow.Field) (string, bool) {
		b, ok := bound[f]
		if !ok {
			return "", false
		}
		return strings.TrimSpace(raw.Cell(r, b.index)), true
	}
	number := func(f workflow.Field) (decimal.Decimal, bool) {
		s, ok := text(f)
		if !ok || s == "" {
			return decimal.Zero, false
		}
		v, err := ParseQuantity(s)
		if err != nil {
			w := entities.NumericCoercionWarning{Row: rowNum, Column: bound[f].header, Value: s}
			// two fields may share one column; warn once per cell
			if !hasWarning(table.Warnings, w) {
				table.Warnings = append(table.Warnings, w)
			}
			return decimal.Zero, true
		}
		return v, true
	}

	item, _ := text(workflow.FieldItem)
	identifier, _ := text(workflow.FieldIdentifier)
	posted, _ := number(workflow.FieldPosted)

	line, err := entities.NewLine(entities.ItemKey(item), identifier, index, posted)
	if err != nil {
		return nil, err
	}

	if v, ok := number(workflow.FieldAvailable); ok {
		line.AvailableQty = v
	}
	line.PoolInput, _ = number(workflow.FieldPool)
	line.DemandInput, _ = number(workflow.FieldDemand)

	if days, ok := number(workflow.FieldETADays); ok {
		line.HasETA = true
		line.ETADays = int(days.IntPart())
		line.ETASurplus, _ = number(workflow.FieldETASurplus)
	}

	if label, ok := text(workflow.FieldDecision); ok {
		decision, known := entities.ParseDecision(label)
		if !known {
			n.logger.Debug("unknown decision label ignored",
				zap.String("source", raw.Source),
				zap.Int("row", rowNum),
				zap.String("label", label))
		}
		if decision != entities.Undecided {
			line.Decision = decision
			line.Flags |= entities.FlagPreset
			line.Note, _ = text(workflow.FieldNote)
		}
	}

	if wf.Priority == workflow.LevelThenPosted {
		level, _ := text(workflow.FieldLevel)
		line.Priority = entities.PriorityKey{entities.LevelRank(level), line.PostedQty}
	}
	return line, nil
}

// ParseQuantity reads a numeric cell, accepting thousands separators and surrounding spaces
func ParseQuantity(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return decimal.NewFromString(s)
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func hasWarning(warnings []entities.NumericCoercionWarning, w entities.NumericCoercionWarning) bool {
	for i := len(warnings) - 1; i >= 0 && warnings[i].Row == w.Row; i-- {
		if warnings[i] == w {
			return true
		}
	}
	return false
}
