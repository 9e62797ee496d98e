package shared

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

// GroupAllocation holds the allocation summary of one item group after a run
type GroupAllocation struct {
	Pool         decimal.Decimal
	Demand       decimal.Decimal
	AllocatedQty decimal.Decimal
	Lines        int
	GoodToGo     int
	NotToUse     int
	Failed       bool
}

// HasAllocation reports whether any stock was given to the group
func (g *GroupAllocation) HasAllocation() bool {
	return g.AllocatedQty.IsPositive()
}

// AllocationMap collects group summaries by item key
type AllocationMap map[entities.ItemKey]*GroupAllocation

// NewAllocationMap creates a new empty allocation map
func NewAllocationMap() AllocationMap {
	return make(AllocationMap)
}

// SummarizeGroup builds the summary of a processed group
func SummarizeGroup(group *entities.ItemGroup, failed bool) *GroupAllocation {
	return &GroupAllocation{
		Pool:         group.Pool,
		Demand:       group.Demand,
		AllocatedQty: group.TotalAllocated(),
		Lines:        len(group.Lines),
		GoodToGo:     group.CountDecision(entities.GoodToGo),
		NotToUse:     group.CountDecision(entities.NotToUse),
		Failed:       failed,
	}
}

// Get retrieves the summary for an item
func (am AllocationMap) Get(item entities.ItemKey) *GroupAllocation {
	return am[item]
}

// Set stores the summary for an item
func (am AllocationMap) Set(item entities.ItemKey, summary *GroupAllocation) {
	am[item] = summary
}

// Has checks if a summary exists for an item
func (am AllocationMap) Has(item entities.ItemKey) bool {
	_, exists := am[item]
	return exists
}

// Clear removes all summaries
func (am AllocationMap) Clear() {
	for key := range am {
		delete(am, key)
	}
}

// Size returns the number of groups stored
func (am AllocationMap) Size() int {
	return len(am)
}

// Items returns the item keys in sorted order
func (am AllocationMap) Items() []entities.ItemKey {
	items := make([]entities.ItemKey, 0, len(am))
	for item := range am {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}

// GetTotalAllocated returns the allocated quantity across all groups
func (am AllocationMap) GetTotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, g := range am {
		total = total.Add(g.AllocatedQty)
	}
	return total
}

// GetTotalDemand returns the demand across all groups
func (am AllocationMap) GetTotalDemand() decimal.Decimal {
	total := decimal.Zero
	for _, g := range am {
		total = total.Add(g.Demand)
	}
	return total
}

// GetCoverageRatio returns allocated over demand (0.0 to 1.0 when demand is served at most once)
func (am AllocationMap) GetCoverageRatio() float64 {
	demand := am.GetTotalDemand()
	if demand.IsZero() {
		return 0.0
	}
	ratio, _ := am.GetTotalAllocated().Div(demand).Float64()
	return ratio
}

// FailedItems returns the items whose group could not be processed, sorted
func (am AllocationMap) FailedItems() []entities.ItemKey {
	var failed []entities.ItemKey
	for _, item := range am.Items() {
		if am[item].Failed {
			failed = append(failed, item)
		}
	}
	return failed
}

// String returns a string representation of the allocation map for debugging
func (am AllocationMap) String() string {
	if len(am) == 0 {
		return "AllocationMap{empty}"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "AllocationMap{%d entries:\n", len(am))
	for _, item := range am.Items() {
		g := am[item]
		fmt.Fprintf(&b, "  %s: pool=%s, demand=%s, allocated=%s, goodToGo=%d, notToUse=%d, failed=%t\n",
			item, g.Pool, g.Demand, g.AllocatedQty, g.GoodToGo, g.NotToUse, g.Failed)
	}
	b.WriteString("}")
	return b.String()
}
