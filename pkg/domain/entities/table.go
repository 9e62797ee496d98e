package entities

import "sort"

// Table is the typed, in-memory form of one input sheet
type Table struct {
	Source   string
	Lines    []*Line
	Warnings []NumericCoercionWarning

	// SkippedRows holds the sheet row numbers of blank rows left out of Lines
	SkippedRows []int
}

// CoercedRows returns how many distinct rows had at least one coerced cell
func (t *Table) CoercedRows() int {
	rows := make(map[int]struct{}, len(t.Warnings))
	for _, w := range t.Warnings {
		rows[w.Row] = struct{}{}
	}
	return len(rows)
}

// Clone deep-copies the table so a run never mutates its input
func (t *Table) Clone() *Table {
	out := &Table{
		Source:      t.Source,
		Lines:       make([]*Line, len(t.Lines)),
		Warnings:    append([]NumericCoercionWarning(nil), t.Warnings...),
		SkippedRows: append([]int(nil), t.SkippedRows...),
	}
	for i, line := range t.Lines {
		out.Lines[i] = line.Clone()
	}
	return out
}

// SortByOriginalIndex restores input row order
func (t *Table) SortByOriginalIndex() {
	sort.SliceStable(t.Lines, func(i, j int) bool {
		return t.Lines[i].OriginalIndex < t.Lines[j].OriginalIndex
	})
}

// ByDecision returns a view with Good to Go lines first, then Not to Use, then Undecided.
// Input order is kept inside each band.
func (t *Table) ByDecision() []*Line {
	rank := func(d Decision) int {
		switch d {
		case GoodToGo:
			return 0
		case NotToUse:
			return 1
		default:
			return 2
		}
	}
	view := append([]*Line(nil), t.Lines...)
	sort.SliceStable(view, func(i, j int) bool {
		return rank(view[i].Decision) < rank(view[j].Decision)
	})
	return view
}
