// Package metrics exposes engine activity as Prometheus collectors fed from run events.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jayjaydesai/WorkBot/pkg/infrastructure/events"
)

const namespace = "workbot"

// Recorder implements events.EventHandler and owns its own registry
type Recorder struct {
	registry *prometheus.Registry

	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	groups      *prometheus.CounterVec
	lines       *prometheus.CounterVec
	coercedRows *prometheus.CounterVec
	fallbacks   *prometheus.CounterVec
	ruleDecided *prometheus.CounterVec
}

// NewRecorder registers the engine collectors plus the Go runtime and process collectors
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Allocation runs by workflow and status.",
		}, []string{"workflow", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of completed runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"workflow"}),
		groups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "groups_total",
			Help:      "Item groups processed by outcome.",
		}, []string{"workflow", "outcome"}),
		lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_decided_total",
			Help:      "Lines by final decision.",
		}, []string{"workflow", "decision"}),
		coercedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coerced_rows_total",
			Help:      "Input rows with at least one non-numeric quantity read as zero.",
		}, []string{"workflow"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_winners_total",
			Help:      "Groups whose winner was chosen as the closest ratio below threshold.",
		}, []string{"workflow"}),
		ruleDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_decisions_total",
			Help:      "Lines decided by a workflow rule before ratio classification.",
		}, []string{"workflow", "rule"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.runs, r.runDuration, r.groups, r.lines, r.coercedRows, r.fallbacks, r.ruleDecided,
	)
	return r
}

// Registry returns the underlying registry, mostly for tests
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) CanHandle(eventType string) bool {
	switch eventType {
	case events.GroupAllocatedEvent, events.GroupFailedEvent, events.RunCompletedEvent, events.RunFailedEvent:
		return true
	}
	return false
}

func (r *Recorder) Handle(event events.Event) error {
	switch data := event.Data().(type) {
	case events.GroupAllocated:
		r.groups.WithLabelValues(data.Workflow, "allocated").Inc()
		r.lines.WithLabelValues(data.Workflow, "good_to_go").Add(float64(data.GoodToGo))
		r.lines.WithLabelValues(data.Workflow, "not_to_use").Add(float64(data.NotToUse))
		if undecided := data.Lines - data.GoodToGo - data.NotToUse; undecided > 0 {
			r.lines.WithLabelValues(data.Workflow, "undecided").Add(float64(undecided))
		}
		if data.Fallback {
			r.fallbacks.WithLabelValues(data.Workflow).Inc()
		}
		for rule, n := range data.RuleCount {
			r.ruleDecided.WithLabelValues(data.Workflow, rule).Add(float64(n))
		}
	case events.GroupFailed:
		r.groups.WithLabelValues(data.Workflow, "failed").Inc()
	case events.RunCompleted:
		r.runs.WithLabelValues(data.Workflow, "completed").Inc()
		r.runDuration.WithLabelValues(data.Workflow).Observe(data.Duration.Seconds())
		r.coercedRows.WithLabelValues(data.Workflow).Add(float64(data.CoercedRows))
	case events.RunFailed:
		r.runs.WithLabelValues(data.Workflow, "failed").Inc()
	}
	return nil
}

var _ events.EventHandler = (*Recorder)(nil)
