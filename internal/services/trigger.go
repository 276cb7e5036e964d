package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/aura-backend/internal/platform/ctxutil"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

// EscalationTrigger hands a scored utterance to the pipeline. Trigger never
// fails and never lets request cancellation reach the pipeline.
type EscalationTrigger interface {
	Trigger(ctx context.Context, ev PipelineEvent)
}

// InlineTrigger runs the pipeline before returning.
type InlineTrigger struct {
	pipeline *EscalationPipeline
}

func NewInlineTrigger(pipeline *EscalationPipeline) *InlineTrigger {
	return &InlineTrigger{pipeline: pipeline}
}

func (t *InlineTrigger) Trigger(ctx context.Context, ev PipelineEvent) {
	t.pipeline.Run(ctxutil.Detach(ctx), ev)
}

// AsyncTrigger runs the pipeline on its own goroutine. Drain waits for
// in-flight runs during shutdown.
type AsyncTrigger struct {
	log      *logger.Logger
	pipeline *EscalationPipeline
	wg       sync.WaitGroup
}

func NewAsyncTrigger(log *logger.Logger, pipeline *EscalationPipeline) *AsyncTrigger {
	return &AsyncTrigger{log: log.With("service", "AsyncTrigger"), pipeline: pipeline}
}

func (t *AsyncTrigger) Trigger(ctx context.Context, ev PipelineEvent) {
	detached := ctxutil.Detach(ctx)
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				t.log.Error("Escalation pipeline panicked", "patient_id", ev.PatientID.String(), "panic", fmt.Sprint(r))
			}
		}()
		t.pipeline.Run(detached, ev)
	}()
}

func (t *AsyncTrigger) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Starter submits events to a durable runner such as a workflow engine.
type Starter interface {
	Start(ctx context.Context, ev PipelineEvent) error
}

// DurableTrigger submits events to Starter and falls back to Fallback when
// the submission fails.
type DurableTrigger struct {
	log      *logger.Logger
	starter  Starter
	fallback EscalationTrigger
}

func NewDurableTrigger(log *logger.Logger, starter Starter, fallback EscalationTrigger) *DurableTrigger {
	return &DurableTrigger{log: log.With("service", "DurableTrigger"), starter: starter, fallback: fallback}
}

func (t *DurableTrigger) Trigger(ctx context.Context, ev PipelineEvent) {
	durable := ev
	durable.Utterance = ""
	if err := t.starter.Start(ctxutil.Detach(ctx), durable); err != nil {
		t.log.Error("Durable escalation submit failed; running in-process", "patient_id", ev.PatientID.String(), "error", err)
		t.fallback.Trigger(ctx, ev)
	}
}
