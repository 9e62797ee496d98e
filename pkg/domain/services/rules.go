package services

import (
	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// Rule decides lines of a group before the classifier runs.
// A rule only ever changes Undecided lines and returns how many it decided.
type Rule interface {
	Name() string
	Apply(group *entities.ItemGroup) int
}

// ApplyRules runs the rules in order and returns the number of lines each one decided
func ApplyRules(group *entities.ItemGroup, rules []Rule) map[string]int {
	decided := make(map[string]int, len(rules))
	for _, rule := range rules {
		if n := rule.Apply(group); n > 0 {
			decided[rule.Name()] += n
		}
	}
	return decided
}

func decide(lines []*entities.Line, d entities.Decision, flag entities.Flag) int {
	n := 0
	for _, line := range lines {
		if line.Decided() {
			continue
		}
		line.Decision = d
		line.Flags |= flag
		n++
	}
	return n
}

// PresetDecisionRule closes a group whose winner was already chosen in the input:
// the remaining Undecided lines become NotToUse.
type PresetDecisionRule struct{}

func (PresetDecisionRule) Name() string { return "preset" }

func (PresetDecisionRule) Apply(group *entities.ItemGroup) int {
	if group.CountDecision(entities.GoodToGo) == 0 {
		return 0
	}
	return decide(group.Lines, entities.NotToUse, 0)
}

// SingleLineRule makes the only line of a one-line group GoodToGo
type SingleLineRule struct{}

func (SingleLineRule) Name() string { return "single-line" }

func (SingleLineRule) Apply(group *entities.ItemGroup) int {
	if len(group.Lines) != 1 {
		return 0
	}
	return decide(group.Lines, entities.GoodToGo, entities.FlagSingleLine)
}

// ExactPalletRule picks the first pallet, in priority order, whose posted quantity was
// consumed exactly by the allocation; every other Undecided line of the group is NotToUse.
type ExactPalletRule struct{}

func (ExactPalletRule) Name() string { return "exact-pallet" }

func (ExactPalletRule) Apply(group *entities.ItemGroup) int {
	for _, line := range PriorityOrder(group.Lines) {
		if line.Decided() || !line.FullySatisfied() {
			continue
		}
		line.Decision = entities.GoodToGo
		line.Flags |= entities.FlagExactPallet
		return 1 + decide(group.Lines, entities.NotToUse, entities.FlagExactPallet)
	}
	return 0
}

// StockOutRule rejects every line of a group with no stock to give
type StockOutRule struct{}

func (StockOutRule) Name() string { return "stock-out" }

func (StockOutRule) Apply(group *entities.ItemGroup) int {
	if group.Pool.IsPositive() {
		return 0
	}
	return decide(group.Lines, entities.NotToUse, entities.FlagStockOut)
}

// ETAHoldRule holds lines whose purchase order arrives within Days and covers the shortfall
type ETAHoldRule struct {
	Days int
}

// DefaultETAHoldDays is the horizon used by the backorder release workflow
const DefaultETAHoldDays = 7

func (ETAHoldRule) Name() string { return "eta-hold" }

func (r ETAHoldRule) Apply(group *entities.ItemGroup) int {
	days := r.Days
	if days == 0 {
		days = DefaultETAHoldDays
	}
	n := 0
	for _, line := range group.Lines {
		if line.Decided() || !line.HasETA {
			continue
		}
		if line.ETADays <= days && !line.ETASurplus.IsNegative() {
			line.Decision = entities.NotToUse
			line.Flags |= entities.FlagETAHold
			n++
		}
	}
	return n
}

// FullCoverageRule releases every line when the pool covers the whole group demand
type FullCoverageRule struct{}

func (FullCoverageRule) Name() string { return "full-coverage" }

func (FullCoverageRule) Apply(group *entities.ItemGroup) int {
	if !group.Pool.IsPositive() || group.Pool.LessThan(group.Demand) {
		return 0
	}
	return decide(group.Lines, entities.GoodToGo, entities.FlagFullCoverage)
}

// DefaultLowAvailabilityCutoff is the availability ratio at or below which nothing is released
var DefaultLowAvailabilityCutoff = decimal.NewFromInt(40)

// LowAvailabilityRule rejects the remaining lines of a group whose pool covers too little of
// the group demand. Availability is pool / demand x 100; a group without demand is left alone.
type LowAvailabilityRule struct {
	Cutoff decimal.Decimal
}

func (LowAvailabilityRule) Name() string { return "low-availability" }

func (r LowAvailabilityRule) Apply(group *entities.ItemGroup) int {
	if !group.Demand.IsPositive() {
		return 0
	}
	cutoff := r.Cutoff
	if cutoff.IsZero() {
		cutoff = DefaultLowAvailabilityCutoff
	}
	if Availability(group).GreaterThan(cutoff) {
		return 0
	}
	return decide(group.Lines, entities.NotToUse, entities.FlagLowAvailability)
}

// Availability returns the group pool as a percentage of its demand, zero when there is no demand
func Availability(group *entities.ItemGroup) decimal.Decimal {
	if !group.Demand.IsPositive() {
		return decimal.Zero
	}
	return group.Pool.Mul(hundred).DivRound(group.Demand, RatioPlaces+4).Round(RatioPlaces)
}
