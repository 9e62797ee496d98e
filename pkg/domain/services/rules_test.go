package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

func TestSingleLineRule(t *testing.T) {
	only := newLine("S", "LOC", 0, 10)
	n := SingleLineRule{}.Apply(newGroup("S", 0, only))
	if n != 1 || only.Decision != entities.GoodToGo || !only.Flags.Has(entities.FlagSingleLine) {
		t.Errorf("Expected single line GoodToGo, got n=%d %v %s", n, only.Decision, only.Flags)
	}

	a, b := newLine("S", "A", 0, 1), newLine("S", "B", 1, 1)
	if n := (SingleLineRule{}).Apply(newGroup("S", 0, a, b)); n != 0 {
		t.Errorf("Expected no decision on a two line group, got %d", n)
	}
}

func TestExactPalletRule(t *testing.T) {
	first := newLine("E", "P1", 0, 10)
	second := newLine("E", "P2", 1, 10)
	partial := newLine("E", "P3", 2, 10)
	group := newGroup("E", 25, first, second, partial)
	Allocate(NewAllocationContext(group))

	n := ExactPalletRule{}.Apply(group)

	if n != 3 {
		t.Fatalf("Expected 3 decided lines, got %d", n)
	}
	if first.Decision != entities.GoodToGo {
		t.Errorf("Expected P1 GoodToGo, got %v", first.Decision)
	}
	if second.Decision != entities.NotToUse || partial.Decision != entities.NotToUse {
		t.Errorf("Expected siblings NotToUse, got %v %v", second.Decision, partial.Decision)
	}
}

func TestExactPalletRule_NoExactPallet(t *testing.T) {
	a := newLine("E", "P1", 0, 10)
	b := newLine("E", "P2", 1, 10)
	group := newGroup("E", 5, a, b)
	Allocate(NewAllocationContext(group))

	if n := (ExactPalletRule{}).Apply(group); n != 0 {
		t.Errorf("Expected nothing decided, got %d", n)
	}
}

func TestStockOutAndFullCoverageRules(t *testing.T) {
	a := newLine("G", "BO1", 0, 4)
	b := newLine("G", "BO2", 1, 6)
	out := newGroup("G", 0, a, b)
	if n := (StockOutRule{}).Apply(out); n != 2 || !a.Flags.Has(entities.FlagStockOut) {
		t.Errorf("Expected both lines stocked out, got %d", n)
	}

	c := newLine("H", "BO1", 0, 4)
	d := newLine("H", "BO2", 1, 6)
	covered := newGroup("H", 12, c, d)
	covered.Demand = qty(10)
	if n := (FullCoverageRule{}).Apply(covered); n != 2 || d.Decision != entities.GoodToGo {
		t.Errorf("Expected full coverage to release both lines, got %d", n)
	}

	e := newLine("I", "BO1", 0, 4)
	short := newGroup("I", 3, e)
	short.Demand = qty(4)
	if n := (FullCoverageRule{}).Apply(short); n != 0 {
		t.Errorf("Expected no release on a short pool, got %d", n)
	}
}

func TestETAHoldRule(t *testing.T) {
	soon := newLine("J", "PO-SOON", 0, 5)
	soon.HasETA, soon.ETADays, soon.ETASurplus = true, 7, decimal.Zero
	late := newLine("J", "PO-LATE", 1, 5)
	late.HasETA, late.ETADays, late.ETASurplus = true, 8, qty(3)
	short := newLine("J", "PO-SHORT", 2, 5)
	short.HasETA, short.ETADays, short.ETASurplus = true, 2, qty(-1)
	none := newLine("J", "NO-ETA", 3, 5)

	n := ETAHoldRule{}.Apply(newGroup("J", 10, soon, late, short, none))

	if n != 1 || soon.Decision != entities.NotToUse || !soon.Flags.Has(entities.FlagETAHold) {
		t.Errorf("Expected only the near ETA with surplus held, got n=%d", n)
	}
	for _, l := range []*entities.Line{late, short, none} {
		if l.Decided() {
			t.Errorf("Expected %s untouched, got %v", l.Identifier, l.Decision)
		}
	}
}

func TestPresetDecisionRule(t *testing.T) {
	winner := newLine("K", "A", 0, 5)
	winner.Decision = entities.GoodToGo
	winner.Flags = entities.FlagPreset
	rest := newLine("K", "B", 1, 5)

	n := PresetDecisionRule{}.Apply(newGroup("K", 10, winner, rest))

	if n != 1 || rest.Decision != entities.NotToUse {
		t.Errorf("Expected remaining line rejected, got n=%d %v", n, rest.Decision)
	}

	open := newLine("L", "A", 0, 5)
	if n := (PresetDecisionRule{}).Apply(newGroup("L", 10, open)); n != 0 {
		t.Errorf("Expected no effect without a preset winner, got %d", n)
	}
}

func TestApplyRules_CountsPerRule(t *testing.T) {
	only := newLine("M", "A", 0, 5)
	group := newGroup("M", 0, only)

	decided := ApplyRules(group, []Rule{StockOutRule{}, SingleLineRule{}})

	if decided["stock-out"] != 1 {
		t.Errorf("Expected stock-out to decide 1 line, got %d", decided["stock-out"])
	}
	if _, ok := decided["single-line"]; ok {
		t.Error("Expected single-line rule to find nothing left to decide")
	}
	if only.Decision != entities.NotToUse {
		t.Errorf("Expected first rule to win, got %v", only.Decision)
	}
}

func TestLowAvailabilityRule(t *testing.T) {
	testCases := []struct {
		name    string
		pool    int64
		demand  int64
		decided int
	}{
		{"well below cutoff", 3, 10, 2},
		{"exactly at cutoff", 4, 10, 2},
		{"just above cutoff", 41, 100, 0},
		{"no demand", 5, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newLine("N", "BO1", 0, 6)
			b := newLine("N", "BO2", 1, 4)
			group := newGroup("N", tc.pool, a, b)
			group.Demand = qty(tc.demand)

			n := LowAvailabilityRule{Cutoff: DefaultLowAvailabilityCutoff}.Apply(group)

			if n != tc.decided {
				t.Fatalf("Expected %d decided lines, got %d", tc.decided, n)
			}
			if tc.decided > 0 && (a.Decision != entities.NotToUse || !b.Flags.Has(entities.FlagLowAvailability)) {
				t.Errorf("Expected both lines rejected for low availability, got %v %s", a.Decision, b.Flags)
			}
		})
	}
}

func TestLowAvailabilityRule_LeavesDecidedLines(t *testing.T) {
	held := newLine("O", "BO1", 0, 6)
	held.Decision = entities.NotToUse
	held.Flags = entities.FlagETAHold
	open := newLine("O", "BO2", 1, 4)
	group := newGroup("O", 2, held, open)
	group.Demand = qty(10)

	if n := (LowAvailabilityRule{}).Apply(group); n != 1 {
		t.Errorf("Expected only the open line decided, got %d", n)
	}
	if held.Flags.Has(entities.FlagLowAvailability) {
		t.Error("Expected the held line to keep its ETA flag only")
	}
}

func TestAvailability(t *testing.T) {
	group := newGroup("P", 1, newLine("P", "BO1", 0, 3))
	group.Demand = qty(3)
	if got := Availability(group); !got.Equal(decimal.RequireFromString("33.33")) {
		t.Errorf("Expected 33.33, got %s", got)
	}
	group.Demand = decimal.Zero
	if got := Availability(group); !got.IsZero() {
		t.Errorf("Expected 0 without demand, got %s", got)
	}
}
