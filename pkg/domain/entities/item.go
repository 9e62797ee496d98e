package entities

import "strings"

// ItemKey represents the demand/supply key lines are grouped by
// (a part number, or a part number plus an index)
type ItemKey string

// Decision represents the terminal state of a line after classification
type Decision int

const (
	Undecided Decision = iota
	GoodToGo
	NotToUse
)

// String method for Decision enum, matching the labels operators see in the sheets
func (d Decision) String() string {
	switch d {
	case Undecided:
		return ""
	case GoodToGo:
		return "Good to Go"
	case NotToUse:
		return "Not to Use"
	default:
		return "Unknown"
	}
}

// ParseDecision converts a sheet label into a Decision.
// Blank cells are Undecided; unknown labels report ok=false.
func ParseDecision(s string) (Decision, bool) {
	switch normalizeLabel(s) {
	case "":
		return Undecided, true
	case "good to go", "goodtogo":
		return GoodToGo, true
	case "not to use", "nottouse":
		return NotToUse, true
	default:
		return Undecided, false
	}
}

func normalizeLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Flag records which upstream rule touched a line
type Flag uint16

const (
	FlagPreset Flag = 1 << iota
	FlagSingleLine
	FlagExactPallet
	FlagStockOut
	FlagETAHold
	FlagFullCoverage
	FlagLowAvailability
)

// Has reports whether all bits of f are set
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// String method for Flag, joining the names of the set bits
func (f Flag) String() string {
	names := []struct {
		flag Flag
		name string
	}{
		{FlagPreset, "Preset"},
		{FlagSingleLine, "SingleLine"},
		{FlagExactPallet, "ExactPallet"},
		{FlagStockOut, "StockOut"},
		{FlagETAHold, "ETAHold"},
		{FlagFullCoverage, "FullCoverage"},
		{FlagLowAvailability, "LowAvailability"},
	}
	var parts []string
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
