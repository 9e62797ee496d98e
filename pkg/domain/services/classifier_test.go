package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

func TestClassify_Scenarios(t *testing.T) {
	testCases := []struct {
		name     string
		ratios   []int64
		winner   string
		fallback bool
	}{
		{"closest above threshold", []int64{140, 95, 60}, "L1", false},
		{"closest far above target still wins", []int64{180, 200, 250}, "L0", false},
		{"closest below threshold is also max", []int64{30, 45, 55}, "L2", false},
		{"fallback flips to max ratio", []int64{55, 200}, "L1", true},
		{"exact target beats neighbours", []int64{99, 101, 100}, "L2", false},
		{"sixty passes threshold", []int64{60, 20}, "L0", false},
		{"equal distance goes to smallest identifier", []int64{105, 95}, "L0", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var lines []*entities.Line
			for i, r := range tc.ratios {
				lines = append(lines, ratioLine("L"+string(rune('0'+i)), i, r))
			}
			group := &entities.ItemGroup{Item: "ITEM", Lines: lines}

			outcome := Classify(group, DefaultClassifierPolicy(PostedOverAllocated))

			if outcome.Winner == nil || outcome.Winner.Identifier != tc.winner {
				t.Fatalf("Expected winner %s, got %v", tc.winner, outcome.Winner)
			}
			if outcome.Fallback != tc.fallback {
				t.Errorf("Expected fallback=%t, got %t", tc.fallback, outcome.Fallback)
			}
			if group.CountDecision(entities.GoodToGo) != 1 {
				t.Errorf("Expected exactly one GoodToGo, got %d", group.CountDecision(entities.GoodToGo))
			}
			if group.CountDecision(entities.NotToUse) != len(lines)-1 {
				t.Errorf("Expected %d NotToUse, got %d", len(lines)-1, group.CountDecision(entities.NotToUse))
			}
		})
	}
}

func TestClassify_SingleUndecidedWinsUnconditionally(t *testing.T) {
	decided := ratioLine("A", 0, 100)
	decided.Decision = entities.NotToUse
	lonely := ratioLine("B", 1, 5)
	group := &entities.ItemGroup{Item: "ITEM", Lines: []*entities.Line{decided, lonely}}

	outcome := Classify(group, DefaultClassifierPolicy(PostedOverAllocated))

	if outcome.Winner != lonely || lonely.Decision != entities.GoodToGo {
		t.Errorf("Expected the only Undecided line to win, got %v", lonely.Decision)
	}
	if decided.Decision != entities.NotToUse {
		t.Errorf("Expected decided line untouched, got %v", decided.Decision)
	}
}

func TestClassify_ResolvedGroupUnchanged(t *testing.T) {
	a := ratioLine("A", 0, 100)
	a.Decision = entities.GoodToGo
	b := ratioLine("B", 1, 100)
	b.Decision = entities.NotToUse
	group := &entities.ItemGroup{Item: "ITEM", Lines: []*entities.Line{a, b}}

	outcome := Classify(group, DefaultClassifierPolicy(PostedOverAllocated))

	if outcome.Winner != nil {
		t.Errorf("Expected no winner for a resolved group, got %s", outcome.Winner.Identifier)
	}
	if a.Decision != entities.GoodToGo || b.Decision != entities.NotToUse {
		t.Error("Expected decisions to be left unchanged")
	}
}

func TestClassify_FallbackTieGoesToSmallestIdentifier(t *testing.T) {
	z := ratioLine("Z", 0, 300)
	a := ratioLine("A", 1, 300)
	low := ratioLine("M", 2, 10)
	// M is closest to 100 but below threshold, Z and A tie on the maximum
	group := &entities.ItemGroup{Item: "ITEM", Lines: []*entities.Line{z, a, low}}

	outcome := Classify(group, DefaultClassifierPolicy(PostedOverAllocated))

	if outcome.Winner != a {
		t.Errorf("Expected A to win the max-ratio tie, got %s", outcome.Winner.Identifier)
	}
}

func TestComputeRatio(t *testing.T) {
	testCases := []struct {
		name      string
		posted    int64
		allocated int64
		demand    int64
		mode      RatioMode
		expected  string
	}{
		{"posted over allocated", 12, 10, 0, PostedOverAllocated, "120"},
		{"rounded to two places", 10, 3, 0, PostedOverAllocated, "333.33"},
		{"zero allocation", 10, 0, 0, PostedOverAllocated, "0"},
		{"allocated over demand", 5, 4, 8, AllocatedOverDemand, "50"},
		{"zero demand", 5, 4, 0, AllocatedOverDemand, "0"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			line := newLine("R", "x", 0, tc.posted)
			line.AllocatedQty = qty(tc.allocated)
			line.Demand = qty(tc.demand)
			got := ComputeRatio(line, tc.mode)
			if !got.Equal(decimal.RequireFromString(tc.expected)) {
				t.Errorf("Expected ratio %s, got %s", tc.expected, got)
			}
		})
	}
}
