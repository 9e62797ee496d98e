package services

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// AggregateMode selects how a per-row figure becomes a group figure
type AggregateMode int

const (
	// Shared means every row of the group repeats the same value
	Shared AggregateMode = iota
	// Sum adds the value of every row
	Sum
)

// String method for AggregateMode enum
func (m AggregateMode) String() string {
	switch m {
	case Shared:
		return "shared"
	case Sum:
		return "sum"
	default:
		return "unknown"
	}
}

// AggregationPolicy configures how pool and demand are derived for a group
type AggregationPolicy struct {
	Pool   AggregateMode
	Demand AggregateMode
}

// Aggregate computes the group's pool and demand and broadcasts both onto every line.
// A Shared figure that differs between rows of the same group is an error.
func Aggregate(group *entities.ItemGroup, policy AggregationPolicy) error {
	if len(group.Lines) == 0 {
		return fmt.Errorf("item %s has no lines", group.Item)
	}

	pool, err := reduce(group.Lines, policy.Pool, func(l *entities.Line) decimal.Decimal { return l.PoolInput })
	if err != nil {
		return fmt.Errorf("pool: %w", err)
	}
	demand, err := reduce(group.Lines, policy.Demand, func(l *entities.Line) decimal.Decimal { return l.DemandInput })
	if err != nil {
		return fmt.Errorf("demand: %w", err)
	}

	group.Pool = pool
	group.Demand = demand
	for _, line := range group.Lines {
		line.Pool = pool
		line.Demand = demand
	}
	return nil
}

// Shortfall returns the part of the group demand the allocation left unserved
func Shortfall(group *entities.ItemGroup) decimal.Decimal {
	gap := group.Demand.Sub(group.TotalAllocated())
	if gap.IsNegative() {
		return decimal.Zero
	}
	return gap
}

func reduce(lines []*entities.Line, mode AggregateMode, value func(*entities.Line) decimal.Decimal) (decimal.Decimal, error) {
	switch mode {
	case Sum:
		total := decimal.Zero
		for _, line := range lines {
			total = total.Add(value(line))
		}
		return total, nil
	case Shared:
		first := value(lines[0])
		for _, line := range lines[1:] {
			if v := value(line); !v.Equal(first) {
				return decimal.Zero, fmt.Errorf("shared value disagrees between rows: %s at %q, %s at %q",
					first, lines[0].Identifier, v, line.Identifier)
			}
		}
		return first, nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported aggregate mode %d", mode)
	}
}
