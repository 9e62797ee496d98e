package services

import (
	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// RatioMode selects the coverage ratio formula
type RatioMode int

const (
	// PostedOverAllocated is posted / allocated x 100, used when lines are pallets to move
	PostedOverAllocated RatioMode = iota
	// AllocatedOverDemand is allocated / group demand x 100, used when lines are backorders
	AllocatedOverDemand
)

// String method for RatioMode enum
func (m RatioMode) String() string {
	switch m {
	case PostedOverAllocated:
		return "posted/allocated"
	case AllocatedOverDemand:
		return "allocated/demand"
	default:
		return "unknown"
	}
}

// RatioPlaces is the number of decimal places ratios are rounded to
const RatioPlaces = 2

var hundred = decimal.NewFromInt(100)

// ComputeRatio returns the line's coverage ratio; a zero denominator yields zero
func ComputeRatio(line *entities.Line, mode RatioMode) decimal.Decimal {
	var num, den decimal.Decimal
	switch mode {
	case AllocatedOverDemand:
		num, den = line.AllocatedQty, line.Demand
	default:
		num, den = line.PostedQty, line.AllocatedQty
	}
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Mul(hundred).DivRound(den, RatioPlaces+4).Round(RatioPlaces)
}
