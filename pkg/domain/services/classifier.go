package services

import (
	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// DefaultThreshold is the lowest closest-to-target ratio accepted without falling back to the maximum
var DefaultThreshold = decimal.NewFromInt(60)

// DefaultTarget is the ratio a perfect line would have
var DefaultTarget = decimal.NewFromInt(100)

// ClassifierPolicy configures the single-winner decision
type ClassifierPolicy struct {
	Mode      RatioMode
	Target    decimal.Decimal
	Threshold decimal.Decimal
}

// DefaultClassifierPolicy returns the 100 / 60 policy for the given ratio mode
func DefaultClassifierPolicy(mode RatioMode) ClassifierPolicy {
	return ClassifierPolicy{Mode: mode, Target: DefaultTarget, Threshold: DefaultThreshold}
}

// ClassifyOutcome describes what the classifier did to one group
type ClassifyOutcome struct {
	Winner   *entities.Line
	Rejected int
	// Fallback is true when the closest-to-target line was below threshold and the maximum ratio won
	Fallback bool
}

// ApplyRatios stores the ratio of every line in the group
func ApplyRatios(group *entities.ItemGroup, mode RatioMode) {
	for _, line := range group.Lines {
		line.Ratio = ComputeRatio(line, mode)
	}
}

// Classify marks exactly one Undecided line of the group GoodToGo and the other Undecided lines NotToUse.
// Lines decided earlier are not touched; a group without Undecided lines is returned unchanged.
func Classify(group *entities.ItemGroup, policy ClassifierPolicy) ClassifyOutcome {
	candidates := group.Undecided()
	if len(candidates) == 0 {
		return ClassifyOutcome{}
	}
	for _, line := range candidates {
		line.Ratio = ComputeRatio(line, policy.Mode)
	}

	outcome := ClassifyOutcome{Winner: candidates[0]}
	if len(candidates) > 1 {
		closest := pick(candidates, func(a, b *entities.Line) int {
			da := a.Ratio.Sub(policy.Target).Abs()
			db := b.Ratio.Sub(policy.Target).Abs()
			return db.Cmp(da)
		})
		outcome.Winner = closest
		if closest.Ratio.LessThan(policy.Threshold) {
			outcome.Winner = pick(candidates, func(a, b *entities.Line) int {
				return a.Ratio.Cmp(b.Ratio)
			})
			outcome.Fallback = outcome.Winner != closest
		}
	}

	for _, line := range candidates {
		if line == outcome.Winner {
			line.Decision = entities.GoodToGo
			continue
		}
		line.Decision = entities.NotToUse
		outcome.Rejected++
	}
	return outcome
}

// pick returns the best line where better(a, b) > 0 means a beats b.
// Equal lines resolve to the smallest identifier, then the earliest row.
func pick(lines []*entities.Line, better func(a, b *entities.Line) int) *entities.Line {
	best := lines[0]
	for _, line := range lines[1:] {
		c := better(line, best)
		if c > 0 || (c == 0 && lessIdentifier(line, best)) {
			best = line
		}
	}
	return best
}

func lessIdentifier(a, b *entities.Line) bool {
	if a.Identifier != b.Identifier {
		return a.Identifier < b.Identifier
	}
	return a.OriginalIndex < b.OriginalIndex
}
