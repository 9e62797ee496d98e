package engine

import (
	"testing"

	"github.com/jayjaydesai/WorkBot/pkg/application/services/workflow"
)

func mustWorkflow(t *testing.T, name string) *workflow.Workflow {
	t.Helper()
	wf, err := workflow.Lookup(name)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	return wf
}
