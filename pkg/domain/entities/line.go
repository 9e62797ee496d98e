package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Line represents one candidate supply row competing for allocation within an item group:
// a bulk location pallet in REPLEN, a backorder line in GREPLEN.
type Line struct {
	Item          ItemKey
	Identifier    string
	OriginalIndex int

	AvailableQty decimal.Decimal
	PostedQty    decimal.Decimal
	Priority     PriorityKey

	// Pool and Demand are broadcast onto every line of the group by the aggregator
	Pool   decimal.Decimal
	Demand decimal.Decimal

	// Raw per-row pool/demand figures as read from the input
	PoolInput   decimal.Decimal
	DemandInput decimal.Decimal

	AllocatedQty  decimal.Decimal
	Ratio         decimal.Decimal
	Decision      Decision
	Note          string
	Reason        string
	FinalQuantity decimal.Decimal
	Flags         Flag

	// ETA fields are only populated by workflows that carry purchase order ETAs
	HasETA     bool
	ETADays    int
	ETASurplus decimal.Decimal

	// Err is set when the line's group failed to process
	Err error
}

// NewLine creates a validated Line
func NewLine(item ItemKey, identifier string, index int, posted decimal.Decimal) (*Line, error) {
	if string(item) == "" {
		return nil, fmt.Errorf("item key cannot be empty")
	}
	if index < 0 {
		return nil, fmt.Errorf("original index cannot be negative, got %d", index)
	}

	return &Line{
		Item:          item,
		Identifier:    identifier,
		OriginalIndex: index,
		AvailableQty:  posted,
		PostedQty:     posted,
	}, nil
}

// Ceiling returns the most this line can receive; negative posted quantities count as zero
func (l *Line) Ceiling() decimal.Decimal {
	if l.PostedQty.IsNegative() {
		return decimal.Zero
	}
	return l.PostedQty
}

// FullySatisfied reports whether the line received its whole posted quantity
func (l *Line) FullySatisfied() bool {
	return l.AllocatedQty.IsPositive() && l.AllocatedQty.Equal(l.Ceiling())
}

// Decided reports whether the line has left the Undecided state
func (l *Line) Decided() bool {
	return l.Decision != Undecided
}

// Reset clears everything the engine writes so a line can be reprocessed
func (l *Line) Reset() {
	l.Pool = decimal.Zero
	l.Demand = decimal.Zero
	l.AllocatedQty = decimal.Zero
	l.Ratio = decimal.Zero
	l.FinalQuantity = decimal.Zero
	l.Reason = ""
	l.Err = nil
	if !l.Flags.Has(FlagPreset) {
		l.Decision = Undecided
		l.Note = ""
	}
	l.Flags &= FlagPreset
}

// Clone returns a copy of the line that shares no mutable state
func (l *Line) Clone() *Line {
	c := *l
	c.Priority = append(PriorityKey(nil), l.Priority...)
	return &c
}
