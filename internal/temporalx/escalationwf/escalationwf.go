// Package escalationwf runs the escalation pipeline as a Temporal workflow so
// a submitted utterance survives a process restart.
package escalationwf

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/aura-backend/internal/modules/escalation"
	"github.com/yungbote/aura-backend/internal/services"
)

const (
	WorkflowName = "escalation_pipeline"
	ActivityRun  = "escalation_pipeline_run"

	// activityTimeout covers scoring history, dispatch and every channel.
	activityTimeout = 2 * time.Minute
)

// Workflow executes the pipeline once. The activity is never retried: a
// retry after the alert commit would notify the clinician twice.
func Workflow(ctx workflow.Context, ev services.PipelineEvent) (string, error) {
	if ev.PatientID == uuid.Nil {
		return "", fmt.Errorf("escalation workflow: missing patient id")
	}
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: activityTimeout,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})
	var state string
	if err := workflow.ExecuteActivity(ctx, ActivityRun, ev).Get(ctx, &state); err != nil {
		return "", err
	}
	return state, nil
}

type PipelineRunner interface {
	Run(ctx context.Context, ev services.PipelineEvent) *escalation.Outcome
}

type Activities struct {
	Pipeline PipelineRunner
}

// Run returns the terminal dispatch state, or "not_critical".
func (a *Activities) Run(ctx context.Context, ev services.PipelineEvent) (string, error) {
	if a == nil || a.Pipeline == nil {
		return "", fmt.Errorf("escalation activity not configured")
	}
	out := a.Pipeline.Run(ctx, ev)
	if out == nil {
		return "not_critical", nil
	}
	activity.GetLogger(ctx).Info("Escalation pipeline finished", "state", string(out.State))
	return string(out.State), nil
}

// Starter submits pipeline events as workflow executions.
type Starter struct {
	tc        temporalsdkclient.Client
	taskQueue string
}

func NewStarter(tc temporalsdkclient.Client, taskQueue string) *Starter {
	return &Starter{tc: tc, taskQueue: taskQueue}
}

func WorkflowID(ev services.PipelineEvent) string {
	return "escalation-" + ev.SnapshotID.String()
}

func (s *Starter) Start(ctx context.Context, ev services.PipelineEvent) error {
	if s == nil || s.tc == nil {
		return fmt.Errorf("temporal client not configured")
	}
	_, err := s.tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        WorkflowID(ev),
		TaskQueue: s.taskQueue,
	}, WorkflowName, ev)
	if err != nil {
		return fmt.Errorf("start escalation workflow: %w", err)
	}
	return nil
}
