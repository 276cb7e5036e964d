package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/aura-backend/internal/data/repos"
	"github.com/yungbote/aura-backend/internal/modules/escalation"
	"github.com/yungbote/aura-backend/internal/modules/triage"
	"github.com/yungbote/aura-backend/internal/observability"
	"github.com/yungbote/aura-backend/internal/platform/dbctx"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

// PipelineEvent is one scored patient utterance.
type PipelineEvent struct {
	PatientID      uuid.UUID `json:"patient_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	MessageID      uuid.UUID `json:"message_id"`
	SnapshotID     uuid.UUID `json:"snapshot_id"`
	Rating         float64   `json:"rating"`
	Confidence     float64   `json:"confidence"`
	// Utterance is left empty on durable paths and reloaded from MessageID.
	Utterance string `json:"utterance,omitempty"`
}

type Escalator interface {
	Dispatch(ctx context.Context, req escalation.Request) (*escalation.Outcome, error)
}

// EscalationPipeline evaluates a scored utterance and, on a critical
// verdict, hands it to the dispatcher. Failures are logged, never returned.
type EscalationPipeline struct {
	log       *logger.Logger
	engine    *triage.Engine
	snapshots repos.SentimentSnapshotRepo
	messages  repos.MessageRepo
	escalator Escalator
	metrics   *observability.Metrics
}

func NewEscalationPipeline(
	log *logger.Logger,
	engine *triage.Engine,
	snapshots repos.SentimentSnapshotRepo,
	messages repos.MessageRepo,
	escalator Escalator,
	metrics *observability.Metrics,
) *EscalationPipeline {
	return &EscalationPipeline{
		log:       log.With("service", "EscalationPipeline"),
		engine:    engine,
		snapshots: snapshots,
		messages:  messages,
		escalator: escalator,
		metrics:   metrics,
	}
}

// Run returns the dispatch outcome, or nil when no escalation was attempted.
func (p *EscalationPipeline) Run(ctx context.Context, ev PipelineEvent) *escalation.Outcome {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "escalation.pipeline")
	defer span.End()

	result := "not_critical"
	defer func() {
		span.SetAttributes(attribute.String("pipeline.result", result))
		p.metrics.ObservePipeline(result, time.Since(start))
	}()

	log := p.log.With("patient_id", ev.PatientID.String(), "snapshot_id", ev.SnapshotID.String())

	utterance := ev.Utterance
	if utterance == "" && ev.MessageID != uuid.Nil && p.messages != nil {
		msg, err := p.messages.GetByID(dbctx.Context{Ctx: ctx}, ev.MessageID)
		if err != nil {
			log.Warn("Utterance reload failed; evaluating trend only", "error", err)
		} else if msg != nil {
			utterance = msg.Content
		}
	}

	var recent []float64
	rows, err := p.snapshots.ListRecentByPatient(dbctx.Context{Ctx: ctx}, ev.PatientID, triage.HistoryWindow, ev.SnapshotID)
	if err != nil {
		log.Warn("Sentiment history unavailable; evaluating without it", "error", err)
	}
	for _, r := range rows {
		recent = append(recent, r.Rating)
	}

	verdict := p.engine.Evaluate(triage.Input{
		PatientID:     ev.PatientID,
		CurrentRating: ev.Rating,
		Confidence:    ev.Confidence,
		UtteranceText: utterance,
		RecentRatings: recent,
	})
	if verdict == nil {
		p.metrics.IncVerdict("none")
		return nil
	}
	p.metrics.IncVerdict(string(verdict.AlertType))
	log.Info("Critical verdict", "alert_type", string(verdict.AlertType), "rationale", verdict.Rationale)

	out, err := p.escalator.Dispatch(ctx, escalation.Request{PatientID: ev.PatientID, Verdict: verdict})
	if out != nil {
		result = string(out.State)
	}
	if err != nil {
		log.Error("Escalation dispatch failed", "alert_type", string(verdict.AlertType), "error", err)
	}
	return out
}
