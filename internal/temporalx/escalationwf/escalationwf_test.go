package escalationwf

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/aura-backend/internal/modules/escalation"
	"github.com/yungbote/aura-backend/internal/services"
)

type fakeRunner struct {
	mu     sync.Mutex
	events []services.PipelineEvent
	out    *escalation.Outcome
}

func (f *fakeRunner) Run(ctx context.Context, ev services.PipelineEvent) *escalation.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.out
}

func runWorkflow(t *testing.T, runner *fakeRunner, ev services.PipelineEvent) (string, error) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflowWithOptions(Workflow, workflow.RegisterOptions{Name: WorkflowName})
	acts := &Activities{Pipeline: runner}
	env.RegisterActivityWithOptions(acts.Run, activity.RegisterOptions{Name: ActivityRun})

	env.ExecuteWorkflow(WorkflowName, ev)
	if !env.IsWorkflowCompleted() {
		t.Fatalf("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		return "", err
	}
	var state string
	if err := env.GetWorkflowResult(&state); err != nil {
		t.Fatalf("result: %v", err)
	}
	return state, nil
}

func TestWorkflowRunsPipelineOnce(t *testing.T) {
	runner := &fakeRunner{out: &escalation.Outcome{State: escalation.StateDone}}
	ev := services.PipelineEvent{PatientID: uuid.New(), SnapshotID: uuid.New(), MessageID: uuid.New(), Rating: 1.0}

	state, err := runWorkflow(t, runner, ev)
	if err != nil {
		t.Fatalf("workflow: %v", err)
	}
	if state != "done" {
		t.Fatalf("state = %q", state)
	}
	if len(runner.events) != 1 || runner.events[0].MessageID != ev.MessageID {
		t.Fatalf("events = %+v", runner.events)
	}
}

func TestWorkflowReportsNotCritical(t *testing.T) {
	state, err := runWorkflow(t, &fakeRunner{}, services.PipelineEvent{PatientID: uuid.New(), Rating: 4})
	if err != nil || state != "not_critical" {
		t.Fatalf("state=%q err=%v", state, err)
	}
}

func TestWorkflowRejectsMissingPatient(t *testing.T) {
	runner := &fakeRunner{}
	if _, err := runWorkflow(t, runner, services.PipelineEvent{}); err == nil {
		t.Fatalf("expected error")
	}
	if len(runner.events) != 0 {
		t.Fatalf("pipeline should not run")
	}
}

func TestWorkflowIDIsPerSnapshot(t *testing.T) {
	id := uuid.New()
	if got := WorkflowID(services.PipelineEvent{SnapshotID: id}); got != "escalation-"+id.String() {
		t.Fatalf("got %s", got)
	}
}
