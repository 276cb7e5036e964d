package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/aura-backend/internal/data/repos"
	"github.com/yungbote/aura-backend/internal/data/repos/testutil"
	types "github.com/yungbote/aura-backend/internal/domain"
	"github.com/yungbote/aura-backend/internal/domain/alerting"
	"github.com/yungbote/aura-backend/internal/modules/triage"
	"github.com/yungbote/aura-backend/internal/observability"
)

type pipelineFixture struct {
	db        *gorm.DB
	pipeline  *EscalationPipeline
	escalator *fakeEscalator
	metrics   *observability.Metrics
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	det, err := triage.DefaultDetector()
	if err != nil {
		t.Fatalf("DefaultDetector: %v", err)
	}
	f := &pipelineFixture{db: db, escalator: &fakeEscalator{}, metrics: observability.NewMetrics()}
	f.pipeline = NewEscalationPipeline(log, triage.NewEngine(det),
		repos.NewSentimentSnapshotRepo(db, log), repos.NewMessageRepo(db, log), f.escalator, f.metrics)
	return f
}

func TestPipelineIgnoresNeutralUtterance(t *testing.T) {
	f := newPipelineFixture(t)
	out := f.pipeline.Run(context.Background(), PipelineEvent{PatientID: uuid.New(), Rating: 3.0, Confidence: 0.8, Utterance: "Work was fine today"})
	if out != nil || len(f.escalator.Requests()) != 0 {
		t.Fatalf("expected no dispatch, got %+v", out)
	}
	if f.metrics.Verdicts("none") != 1 {
		t.Fatalf("verdict metric = %v", f.metrics.Verdicts("none"))
	}
}

func TestPipelineCrisisLanguageEscalates(t *testing.T) {
	f := newPipelineFixture(t)
	patient := uuid.New()
	out := f.pipeline.Run(context.Background(), PipelineEvent{PatientID: patient, Rating: 3.0, Confidence: 0.8, Utterance: "Sometimes I want to END IT ALL"})
	if out == nil || out.State != "done" {
		t.Fatalf("outcome = %+v", out)
	}
	reqs := f.escalator.Requests()
	if len(reqs) != 1 || reqs[0].PatientID != patient {
		t.Fatalf("requests = %+v", reqs)
	}
	if reqs[0].Verdict.AlertType != alerting.AlertTypeSuicidalIdeation {
		t.Fatalf("alert type = %s", reqs[0].Verdict.AlertType)
	}
}

func TestPipelineHistoryExcludesCurrentSnapshot(t *testing.T) {
	f := newPipelineFixture(t)
	ctx := context.Background()
	patient := uuid.New()
	base := time.Now().Add(-time.Hour)
	testutil.SeedSnapshot(t, ctx, f.db, patient, 2.5, base)
	testutil.SeedSnapshot(t, ctx, f.db, patient, 2.2, base.Add(time.Minute))
	testutil.SeedSnapshot(t, ctx, f.db, patient, 2.0, base.Add(2*time.Minute))
	current := testutil.SeedSnapshot(t, ctx, f.db, patient, 1.4, base.Add(3*time.Minute))

	f.pipeline.Run(ctx, PipelineEvent{PatientID: patient, SnapshotID: current.ID, Rating: 1.4, Confidence: 0.9, Utterance: "tired"})
	reqs := f.escalator.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(reqs))
	}
	v := reqs[0].Verdict
	if v.AlertType != alerting.AlertTypeSevereDepression || v.Rationale != "Very low mood detected (rating: 1.4)" {
		t.Fatalf("verdict = %+v", v)
	}
	want := []float64{2.0, 2.2, 2.5}
	if len(v.Evidence.RecentRatings) != len(want) {
		t.Fatalf("recent = %v", v.Evidence.RecentRatings)
	}
	for i := range want {
		if v.Evidence.RecentRatings[i] != want[i] {
			t.Fatalf("recent = %v", v.Evidence.RecentRatings)
		}
	}
}

func TestPipelineReloadsUtteranceFromMessage(t *testing.T) {
	f := newPipelineFixture(t)
	patient := uuid.New()
	msg := testutil.SeedMessage(t, context.Background(), f.db, patient, uuid.New(), types.SenderPatient, "I might hurt myself tonight", time.Now())

	f.pipeline.Run(context.Background(), PipelineEvent{PatientID: patient, MessageID: msg.ID, Rating: 3.5, Confidence: 0.7})
	reqs := f.escalator.Requests()
	if len(reqs) != 1 || reqs[0].Verdict.AlertType != alerting.AlertTypeSuicidalIdeation {
		t.Fatalf("requests = %+v", reqs)
	}
}

func TestInlineTriggerDetachesFromRequest(t *testing.T) {
	f := newPipelineFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewInlineTrigger(f.pipeline).Trigger(ctx, PipelineEvent{PatientID: uuid.New(), Rating: 1.0, Utterance: "x"})
	if len(f.escalator.ctxErrs) != 1 || f.escalator.ctxErrs[0] != nil {
		t.Fatalf("dispatch ctx errs = %v", f.escalator.ctxErrs)
	}
}

func TestAsyncTriggerDrains(t *testing.T) {
	f := newPipelineFixture(t)
	trig := NewAsyncTrigger(testutil.Logger(t), f.pipeline)
	for i := 0; i < 3; i++ {
		trig.Trigger(context.Background(), PipelineEvent{PatientID: uuid.New(), Rating: 1.0, Utterance: "x"})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := trig.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if n := len(f.escalator.Requests()); n != 3 {
		t.Fatalf("dispatches = %d", n)
	}
}

func TestDurableTriggerStripsUtteranceAndFallsBack(t *testing.T) {
	log := testutil.Logger(t)
	starter := &recordingStarter{}
	fallback := &recordingTrigger{}
	ev := PipelineEvent{PatientID: uuid.New(), Rating: 1.0, Utterance: "private words"}

	NewDurableTrigger(log, starter, fallback).Trigger(context.Background(), ev)
	if len(starter.events) != 1 || starter.events[0].Utterance != "" || len(fallback.events) != 0 {
		t.Fatalf("starter=%+v fallback=%+v", starter.events, fallback.events)
	}

	NewDurableTrigger(log, failingStarter{}, fallback).Trigger(context.Background(), ev)
	if len(fallback.events) != 1 || fallback.events[0].Utterance != "private words" {
		t.Fatalf("fallback = %+v", fallback.events)
	}
}
