package services

import (
	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// Notes written by the annotator
const (
	NoteFullAllocation = "Full Allocation"
	NoteBestPossible   = "Best Possible Allocated"
	NoteNoAllocation   = "No Allocation"
	NoteETAHold        = "Please check as ETA is closer so not allocated"
	NoteErrorPrefix    = "Allocation Error: "
)

// Reasons written by the annotator
const (
	ReasonStockOut     = "Actual Stock is 0 or less"
	ReasonETAHold      = "ETA is within 7 days to release maximum"
	ReasonFullCoverage = "Actual Stock is more than total BO qty"
	ReasonCloserToBO   = "Actual Stock is lower but closer to Customer BO to release"
	ReasonLowStock     = "Actual Stock is 40% or less of total BO qty"
	ReasonSingleLine   = "Only location holding the item"
	ReasonExactPallet  = "Pallet fully consumed by replen stock"
	ReasonOtherPallet  = "Another pallet is fully consumed by replen stock"
	ReasonPreset       = "Decision supplied in input"
	ReasonClosest      = "Ratio closest to target"
	ReasonNone         = "No specific reason"
)

// NoteStyle selects how a GoodToGo line is labelled
type NoteStyle int

const (
	// CutoffNotes labels by ratio against a cutoff; full allocation moves the posted quantity
	CutoffNotes NoteStyle = iota
	// CoverageNotes labels by whether the allocation covered the whole line
	CoverageNotes
)

// DefaultCutoff is the ratio from which a pallet move is only a best-possible allocation
var DefaultCutoff = decimal.NewFromInt(120)

// AnnotationPolicy configures the note lookup
type AnnotationPolicy struct {
	Style  NoteStyle
	Cutoff decimal.Decimal
}

// Annotate sets the note, reason and final quantity of a line from its decision, ratio and flags
func Annotate(line *entities.Line, policy AnnotationPolicy) {
	if line.Err != nil {
		line.Decision = entities.Undecided
		line.Note = NoteErrorPrefix + line.Err.Error()
		line.Reason = ""
		line.FinalQuantity = decimal.Zero
		return
	}

	line.Reason = reasonFor(line, policy.Style)
	presetNote := line.Flags.Has(entities.FlagPreset) && line.Note != ""

	switch line.Decision {
	case entities.GoodToGo:
		note, qty := goodToGo(line, policy)
		line.FinalQuantity = qty
		if !presetNote {
			line.Note = note
		}
	case entities.NotToUse:
		line.FinalQuantity = decimal.Zero
		if presetNote {
			return
		}
		if line.Flags.Has(entities.FlagETAHold) {
			line.Note = NoteETAHold
		} else {
			line.Note = NoteNoAllocation
		}
	default:
		line.FinalQuantity = decimal.Zero
		if !presetNote {
			line.Note = ""
		}
	}
}

func goodToGo(line *entities.Line, policy AnnotationPolicy) (string, decimal.Decimal) {
	if !line.AllocatedQty.IsPositive() && !line.Flags.Has(entities.FlagFullCoverage) {
		return NoteNoAllocation, decimal.Zero
	}
	if policy.Style == CoverageNotes {
		if line.Flags.Has(entities.FlagFullCoverage) || line.FullySatisfied() {
			return NoteFullAllocation, line.AllocatedQty
		}
		return NoteBestPossible, line.AllocatedQty
	}

	cutoff := policy.Cutoff
	if cutoff.IsZero() {
		cutoff = DefaultCutoff
	}
	if line.Ratio.LessThan(cutoff) {
		return NoteFullAllocation, line.Ceiling()
	}
	return NoteBestPossible, line.AllocatedQty
}

func reasonFor(line *entities.Line, style NoteStyle) string {
	switch {
	case line.Flags.Has(entities.FlagPreset):
		return ReasonPreset
	case line.Flags.Has(entities.FlagStockOut):
		return ReasonStockOut
	case line.Flags.Has(entities.FlagETAHold):
		return ReasonETAHold
	case line.Flags.Has(entities.FlagFullCoverage):
		return ReasonFullCoverage
	case line.Flags.Has(entities.FlagLowAvailability):
		return ReasonLowStock
	case line.Flags.Has(entities.FlagSingleLine):
		return ReasonSingleLine
	case line.Flags.Has(entities.FlagExactPallet):
		if line.Decision == entities.GoodToGo {
			return ReasonExactPallet
		}
		return ReasonOtherPallet
	}
	if !line.Decided() {
		return ""
	}
	if style == CoverageNotes {
		return ReasonCloserToBO
	}
	return ReasonClosest
}
