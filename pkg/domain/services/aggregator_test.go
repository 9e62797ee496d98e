package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/jayjaydesai/WorkBot/pkg/domain/entities"
)

func TestAggregate_SharedPoolSumDemand(t *testing.T) {
	a := newLine("A", "BO1", 0, 4)
	a.PoolInput, a.DemandInput = qty(9), qty(4)
	b := newLine("A", "BO2", 1, 6)
	b.PoolInput, b.DemandInput = qty(9), qty(6)
	group := &entities.ItemGroup{Item: "A", Lines: []*entities.Line{a, b}}

	if err := Aggregate(group, AggregationPolicy{Pool: Shared, Demand: Sum}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !group.Pool.Equal(qty(9)) || !group.Demand.Equal(qty(10)) {
		t.Errorf("Expected pool 9 demand 10, got %s %s", group.Pool, group.Demand)
	}
	for _, l := range group.Lines {
		if !l.Pool.Equal(qty(9)) || !l.Demand.Equal(qty(10)) {
			t.Errorf("Expected figures broadcast onto %s, got %s %s", l.Identifier, l.Pool, l.Demand)
		}
	}
	Allocate(NewAllocationContext(group))
	if !Shortfall(group).Equal(qty(1)) {
		t.Errorf("Expected shortfall 1, got %s", Shortfall(group))
	}
}

func TestAggregate_SharedDisagreement(t *testing.T) {
	a := newLine("A", "L1", 0, 4)
	a.PoolInput = qty(9)
	b := newLine("A", "L2", 1, 6)
	b.PoolInput = qty(8)
	group := &entities.ItemGroup{Item: "A", Lines: []*entities.Line{a, b}}

	err := Aggregate(group, AggregationPolicy{Pool: Shared, Demand: Sum})
	if err == nil {
		t.Fatal("Expected an error for disagreeing shared pool")
	}
	if !strings.HasPrefix(err.Error(), "pool: shared value disagrees") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestAggregate_EmptyGroup(t *testing.T) {
	err := Aggregate(&entities.ItemGroup{Item: "Z"}, AggregationPolicy{})
	if err == nil || errors.Is(err, entities.ErrEmptyInput) {
		t.Errorf("Expected a plain group error, got %v", err)
	}
}
