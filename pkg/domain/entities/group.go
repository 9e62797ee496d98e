package entities

import "github.com/shopspring/decimal"

// ItemGroup is the set of lines sharing an item key
type ItemGroup struct {
	Item   ItemKey
	Lines  []*Line
	Pool   decimal.Decimal
	Demand decimal.Decimal
}

// GroupLines partitions lines by item key, keeping groups in order of first appearance
// and lines within a group in input order.
func GroupLines(lines []*Line) []*ItemGroup {
	index := make(map[ItemKey]*ItemGroup)
	var groups []*ItemGroup
	for _, line := range lines {
		group, ok := index[line.Item]
		if !ok {
			group = &ItemGroup{Item: line.Item}
			index[line.Item] = group
			groups = append(groups, group)
		}
		group.Lines = append(group.Lines, line)
	}
	return groups
}

// Undecided returns the lines of the group still waiting for a decision
func (g *ItemGroup) Undecided() []*Line {
	var out []*Line
	for _, line := range g.Lines {
		if !line.Decided() {
			out = append(out, line)
		}
	}
	return out
}

// TotalAllocated sums the allocated quantity of every line in the group
func (g *ItemGroup) TotalAllocated() decimal.Decimal {
	total := decimal.Zero
	for _, line := range g.Lines {
		total = total.Add(line.AllocatedQty)
	}
	return total
}

// CountDecision counts lines in the given state
func (g *ItemGroup) CountDecision(d Decision) int {
	n := 0
	for _, line := range g.Lines {
		if line.Decision == d {
			n++
		}
	}
	return n
}
