package events

import "time"

const (
	RunStartedEvent     = "run.started"
	GroupAllocatedEvent = "group.allocated"
	GroupFailedEvent    = "group.failed"
	RunCompletedEvent   = "run.completed"
	RunFailedEvent      = "run.failed"
)

// AllTypes lists every event type the engine publishes
var AllTypes = []string{RunStartedEvent, GroupAllocatedEvent, GroupFailedEvent, RunCompletedEvent, RunFailedEvent}

type RunStarted struct {
	Workflow string `json:"workflow"`
	Source   string `json:"source"`
	Lines    int    `json:"lines"`
	Groups   int    `json:"groups"`
}

type GroupAllocated struct {
	Workflow  string         `json:"workflow"`
	Item      string         `json:"item"`
	Lines     int            `json:"lines"`
	GoodToGo  int            `json:"good_to_go"`
	NotToUse  int            `json:"not_to_use"`
	Fallback  bool           `json:"fallback"`
	RuleCount map[string]int `json:"rule_count,omitempty"`
}

type GroupFailed struct {
	Workflow string `json:"workflow"`
	Item     string `json:"item"`
	Error    string `json:"error"`
}

type RunCompleted struct {
	Workflow     string        `json:"workflow"`
	Lines        int           `json:"lines"`
	Groups       int           `json:"groups"`
	FailedGroups int           `json:"failed_groups"`
	CoercedRows  int           `json:"coerced_rows"`
	Duration     time.Duration `json:"duration"`
}

type RunFailed struct {
	Workflow string `json:"workflow"`
	Source   string `json:"source"`
	Error    string `json:"error"`
}

func NewRunStartedEvent(runID string, payload RunStarted) Event {
	return NewEvent(RunStartedEvent, runID, payload)
}

func NewGroupAllocatedEvent(runID string, payload GroupAllocated) Event {
	return NewEvent(GroupAllocatedEvent, runID, payload)
}

func NewGroupFailedEvent(runID string, payload GroupFailed) Event {
	return NewEvent(GroupFailedEvent, runID, payload)
}

func NewRunCompletedEvent(runID string, payload RunCompleted) Event {
	return NewEvent(RunCompletedEvent, runID, payload)
}

func NewRunFailedEvent(runID string, payload RunFailed) Event {
	return NewEvent(RunFailedEvent, runID, payload)
}
