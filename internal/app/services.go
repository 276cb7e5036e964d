package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/aura-backend/internal/modules/escalation"
	"github.com/yungbote/aura-backend/internal/modules/triage"
	"github.com/yungbote/aura-backend/internal/observability"
	"github.com/yungbote/aura-backend/internal/platform/logger"
	"github.com/yungbote/aura-backend/internal/platform/redisx"
	"github.com/yungbote/aura-backend/internal/services"
	"github.com/yungbote/aura-backend/internal/temporalx/escalationwf"
	"github.com/yungbote/aura-backend/internal/temporalx/temporalworker"
)

type Services struct {
	Companion services.CompanionService
	Alerts    services.AlertService
	Delivery  services.DeliveryStatusService

	Pipeline *services.EscalationPipeline
	Trigger  services.EscalationTrigger
	// async is drained on shutdown; set for async and temporal modes.
	async  *services.AsyncTrigger
	Worker *temporalworker.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	detector, err := triage.DefaultDetector()
	if err != nil {
		return Services{}, fmt.Errorf("load crisis lexicon: %w", err)
	}
	log.Info("Crisis lexicon loaded", "version", detector.Version(), "phrases", len(detector.Phrases()))
	engine := triage.NewEngine(detector)

	deps := escalation.Deps{
		Users:         r.User,
		Assignments:   r.Assignment,
		Messages:      r.Message,
		Alerts:        r.Alert,
		Notifications: r.Notification,
		Voice:         escalation.NewElevenLabsCaller(c.ElevenLabs),
		SMS:           escalation.NewUnavailableTextSender(),
		Metrics:       metrics,
	}
	if c.Twilio != nil {
		deps.SMS = escalation.NewTwilioSender(c.Twilio)
	}
	if c.SendGrid != nil {
		deps.Mail = escalation.NewSendGridMailer(c.SendGrid)
	}
	if c.Redis != nil {
		deps.Push = redisx.NewPublisher(log, c.Redis)
	}
	if cfg.CooldownDuration > 0 {
		if c.Redis != nil {
			deps.Cooldown = escalation.NewRedisCooldown(c.Redis, cfg.CooldownDuration)
		} else {
			deps.Cooldown = escalation.NewMemoryCooldown(cfg.CooldownDuration)
		}
		log.Info("Escalation cooldown enabled", "window", cfg.CooldownDuration.String(), "redis", c.Redis != nil)
	}
	dispatcher := escalation.NewDispatcher(log, escalation.Config{
		ChannelTimeout: cfg.ChannelTimeout,
		RedactContent:  cfg.RedactContent,
		PublicBaseURL:  cfg.PublicBaseURL,
	}, deps)

	pipeline := services.NewEscalationPipeline(log, engine, r.Snapshot, r.Message, dispatcher, metrics)

	out := Services{Pipeline: pipeline}
	switch cfg.EscalationMode {
	case EscalationSync:
		out.Trigger = services.NewInlineTrigger(pipeline)
	default:
		out.async = services.NewAsyncTrigger(log, pipeline)
		out.Trigger = out.async
	}
	if cfg.EscalationMode == EscalationTemporal && c.Temporal != nil {
		out.Trigger = services.NewDurableTrigger(log, escalationwf.NewStarter(c.Temporal, c.TemporalCfg.TaskQueue), out.async)
		if cfg.RunWorker {
			w, err := temporalworker.NewRunner(log, c.TemporalCfg, c.Temporal, pipeline)
			if err != nil {
				return Services{}, fmt.Errorf("init temporal worker: %w", err)
			}
			out.Worker = w
		}
	}
	log.Info("Escalation trigger ready", "mode", string(cfg.EscalationMode))

	var scorer services.SentimentScorer
	if c.OpenAI != nil {
		scorer = services.NewSentimentScorer(log, c.OpenAI)
	}
	out.Companion = services.NewCompanionService(db, log, c.OpenAI, scorer, r.Conversation, r.Message, r.Snapshot, out.Trigger, metrics)
	out.Alerts = services.NewAlertService(log, r.User, r.Assignment, r.Snapshot, r.Alert, r.Notification)
	out.Delivery = services.NewDeliveryStatusService(log, r.Notification, metrics)
	return out, nil
}

// drain waits for in-process escalations started before shutdown.
func (s *Services) drain(ctx context.Context) error {
	if s.async == nil {
		return nil
	}
	return s.async.Drain(ctx)
}
