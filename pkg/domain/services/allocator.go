package services

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// AllocationContext owns the undistributed pool of a single item group while it is allocated.
// It is created per group and never shared.
type AllocationContext struct {
	Group     *entities.ItemGroup
	remaining decimal.Decimal
}

// NewAllocationContext starts an allocation for the group with its full pool
func NewAllocationContext(group *entities.ItemGroup) *AllocationContext {
	return &AllocationContext{
		Group:     group,
		remaining: group.Pool,
	}
}

// Remaining returns the pool not yet distributed
func (ac *AllocationContext) Remaining() decimal.Decimal {
	return ac.remaining
}

// take removes up to ceiling from the pool and returns the amount taken
func (ac *AllocationContext) take(ceiling decimal.Decimal) decimal.Decimal {
	if !ac.remaining.IsPositive() || !ceiling.IsPositive() {
		return decimal.Zero
	}
	taken := decimal.Min(ceiling, ac.remaining)
	ac.remaining = ac.remaining.Sub(taken)
	return taken
}

// PriorityOrder returns the lines sorted by priority key descending, ties kept in input order
func PriorityOrder(lines []*entities.Line) []*entities.Line {
	ordered := append([]*entities.Line(nil), lines...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if c := ordered[i].Priority.Compare(ordered[j].Priority); c != 0 {
			return c > 0
		}
		return ordered[i].OriginalIndex < ordered[j].OriginalIndex
	})
	return ordered
}

// Allocate distributes the group's pool over its lines first-fit by priority.
// Every line is assigned, so lines reached after depletion carry an explicit zero.
func Allocate(ac *AllocationContext) {
	for _, line := range PriorityOrder(ac.Group.Lines) {
		line.AllocatedQty = ac.take(line.Ceiling())
	}
}
