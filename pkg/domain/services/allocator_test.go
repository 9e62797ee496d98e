package services

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

func TestAllocate_Scenarios(t *testing.T) {
	t.Run("pool split across two lines", func(t *testing.T) {
		l1 := newLine("ITEM-A", "L1", 0, 10)
		l2 := newLine("ITEM-A", "L2", 1, 10)
		group := newGroup("ITEM-A", 15, l1, l2)
		ac := NewAllocationContext(group)

		Allocate(ac)

		if !l1.AllocatedQty.Equal(qty(10)) {
			t.Errorf("Expected L1 allocated 10, got %s", l1.AllocatedQty)
		}
		if !l2.AllocatedQty.Equal(qty(5)) {
			t.Errorf("Expected L2 allocated 5, got %s", l2.AllocatedQty)
		}
		if !group.TotalAllocated().Equal(qty(15)) {
			t.Errorf("Expected total allocated 15, got %s", group.TotalAllocated())
		}
		if !ac.Remaining().IsZero() {
			t.Errorf("Expected pool depleted, got %s remaining", ac.Remaining())
		}
	})

	t.Run("empty pool allocates explicit zero", func(t *testing.T) {
		l1 := newLine("ITEM-B", "L1", 0, 5)
		l1.AllocatedQty = qty(99)
		group := newGroup("ITEM-B", 0, l1)

		Allocate(NewAllocationContext(group))

		if !l1.AllocatedQty.IsZero() {
			t.Errorf("Expected allocated 0, got %s", l1.AllocatedQty)
		}
		if l1.Decision != entities.Undecided {
			t.Errorf("Expected decision untouched, got %v", l1.Decision)
		}
	})

	t.Run("negative pool allocates zero", func(t *testing.T) {
		l1 := newLine("ITEM-B", "L1", 0, 5)
		group := newGroup("ITEM-B", -3, l1)
		Allocate(NewAllocationContext(group))
		if !l1.AllocatedQty.IsZero() {
			t.Errorf("Expected allocated 0, got %s", l1.AllocatedQty)
		}
	})

	t.Run("negative posted quantity is never allocated", func(t *testing.T) {
		neg := newLine("ITEM-N", "NEG", 0, -4)
		pos := newLine("ITEM-N", "POS", 1, 3)
		group := newGroup("ITEM-N", 10, neg, pos)

		Allocate(NewAllocationContext(group))

		if !neg.AllocatedQty.IsZero() {
			t.Errorf("Expected negative line allocated 0, got %s", neg.AllocatedQty)
		}
		if !pos.AllocatedQty.Equal(qty(3)) {
			t.Errorf("Expected 3, got %s", pos.AllocatedQty)
		}
	})

	t.Run("greedy does not skip ahead", func(t *testing.T) {
		big := newLine("ITEM-G", "BIG", 0, 8)
		small := newLine("ITEM-G", "SMALL", 1, 5)
		big.Priority = entities.PriorityKey{qty(2)}
		small.Priority = entities.PriorityKey{qty(1)}
		group := newGroup("ITEM-G", 10, small, big)

		Allocate(NewAllocationContext(group))

		if !big.AllocatedQty.Equal(qty(8)) || !small.AllocatedQty.Equal(qty(2)) {
			t.Errorf("Expected BIG=8 SMALL=2, got BIG=%s SMALL=%s", big.AllocatedQty, small.AllocatedQty)
		}
	})
}

func TestPriorityOrder_IsStable(t *testing.T) {
	lines := []*entities.Line{
		newLine("I", "c", 2, 1),
		newLine("I", "a", 0, 1),
		newLine("I", "high", 3, 1),
		newLine("I", "b", 1, 1),
	}
	lines[2].Priority = entities.PriorityKey{qty(5)}

	ordered := PriorityOrder(lines)

	expected := []string{"high", "a", "b", "c"}
	for i, id := range expected {
		if ordered[i].Identifier != id {
			t.Errorf("Expected position %d to be %s, got %s", i, id, ordered[i].Identifier)
		}
	}
	if lines[0].Identifier != "c" {
		t.Error("Expected PriorityOrder not to reorder its input")
	}
}

func TestAllocate_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		n := 1 + rng.Intn(6)
		lines := make([]*entities.Line, n)
		for i := range lines {
			lines[i] = newLine("P", string(rune('a'+i)), i, int64(rng.Intn(30)-5))
			lines[i].Priority = entities.PriorityKey{qty(int64(rng.Intn(3))), qty(int64(rng.Intn(20)))}
		}
		pool := int64(rng.Intn(60) - 10)
		group := newGroup("P", pool, lines...)

		Allocate(NewAllocationContext(group))

		expected := decimal.Zero
		remaining := decimal.Max(qty(pool), decimal.Zero)
		for _, line := range PriorityOrder(lines) {
			if line.AllocatedQty.IsNegative() || line.AllocatedQty.GreaterThan(line.Ceiling()) {
				t.Fatalf("run %d: over-allocation on %s: %s of %s", run, line.Identifier, line.AllocatedQty, line.PostedQty)
			}
			take := decimal.Min(line.Ceiling(), remaining)
			remaining = remaining.Sub(take)
			expected = expected.Add(take)
		}

		total := group.TotalAllocated()
		if total.GreaterThan(decimal.Max(qty(pool), decimal.Zero)) {
			t.Fatalf("run %d: allocated %s exceeds pool %d", run, total, pool)
		}
		if !total.Equal(expected) {
			t.Fatalf("run %d: expected total %s, got %s", run, expected, total)
		}
	}
}

func TestAllocate_IsDeterministic(t *testing.T) {
	build := func() *entities.ItemGroup {
		a := newLine("D", "A", 0, 7)
		b := newLine("D", "B", 1, 7)
		c := newLine("D", "C", 2, 7)
		return newGroup("D", 10, a, b, c)
	}

	first, second := build(), build()
	Allocate(NewAllocationContext(first))
	Allocate(NewAllocationContext(second))

	for i := range first.Lines {
		if !first.Lines[i].AllocatedQty.Equal(second.Lines[i].AllocatedQty) {
			t.Errorf("Expected identical allocation on line %d, got %s and %s",
				i, first.Lines[i].AllocatedQty, second.Lines[i].AllocatedQty)
		}
	}
}
