package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/events"
)

func TestRecorderCountsEvents(t *testing.T) {
	r := NewRecorder()

	feed := []events.Event{
		events.NewRunStartedEvent("run-1", events.RunStarted{Workflow: "replen", Lines: 5, Groups: 2}),
		events.NewGroupAllocatedEvent("run-1", events.GroupAllocated{
			Workflow: "replen", Item: "ITEM-A", Lines: 3, GoodToGo: 1, NotToUse: 2,
			RuleCount: map[string]int{"exact-pallet": 3},
		}),
		events.NewGroupAllocatedEvent("run-1", events.GroupAllocated{
			Workflow: "replen", Item: "ITEM-B", Lines: 2, GoodToGo: 1, Fallback: true,
		}),
		events.NewGroupFailedEvent("run-1", events.GroupFailed{Workflow: "replen", Item: "ITEM-C", Error: "boom"}),
		events.NewRunCompletedEvent("run-1", events.RunCompleted{Workflow: "replen", CoercedRows: 2, Duration: 30 * time.Millisecond}),
		events.NewRunFailedEvent("run-2", events.RunFailed{Workflow: "greplen", Error: "missing column"}),
	}
	for _, e := range feed {
		if !r.CanHandle(e.Type()) {
			continue
		}
		if err := r.Handle(e); err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
	}

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"completed runs", testutil.ToFloat64(r.runs.WithLabelValues("replen", "completed")), 1},
		{"failed runs", testutil.ToFloat64(r.runs.WithLabelValues("greplen", "failed")), 1},
		{"allocated groups", testutil.ToFloat64(r.groups.WithLabelValues("replen", "allocated")), 2},
		{"failed groups", testutil.ToFloat64(r.groups.WithLabelValues("replen", "failed")), 1},
		{"good to go", testutil.ToFloat64(r.lines.WithLabelValues("replen", "good_to_go")), 2},
		{"not to use", testutil.ToFloat64(r.lines.WithLabelValues("replen", "not_to_use")), 2},
		{"undecided", testutil.ToFloat64(r.lines.WithLabelValues("replen", "undecided")), 1},
		{"fallbacks", testutil.ToFloat64(r.fallbacks.WithLabelValues("replen")), 1},
		{"rule decisions", testutil.ToFloat64(r.ruleDecided.WithLabelValues("replen", "exact-pallet")), 3},
		{"coerced rows", testutil.ToFloat64(r.coercedRows.WithLabelValues("replen")), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, tt.got)
			}
		})
	}
}

func TestRecorderIgnoresRunStarted(t *testing.T) {
	r := NewRecorder()
	if r.CanHandle(events.RunStartedEvent) {
		t.Error("Expected run.started to be ignored")
	}
}

func TestRecorderHandler(t *testing.T) {
	r := NewRecorder()
	_ = r.Handle(events.NewRunCompletedEvent("run-1", events.RunCompleted{Workflow: "greplen"}))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `workbot_runs_total{status="completed",workflow="greplen"} 1`) {
		t.Errorf("Expected runs counter in exposition, got:\n%s", body)
	}
}
