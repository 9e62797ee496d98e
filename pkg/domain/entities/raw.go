package entities

// RawTable is a loaded sheet before column resolution: a header row and string cells
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
}

// Cell returns the value at row/col, or "" when the row is short
func (r *RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(r.Rows) || col < 0 || col >= len(r.Rows[row]) {
		return ""
	}
	return r.Rows[row][col]
}
