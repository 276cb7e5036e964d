package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/aura-backend/internal/platform/elevenlabs"
	"github.com/yungbote/aura-backend/internal/platform/logger"
	"github.com/yungbote/aura-backend/internal/platform/openai"
	"github.com/yungbote/aura-backend/internal/platform/redisx"
	"github.com/yungbote/aura-backend/internal/platform/sendgrid"
	"github.com/yungbote/aura-backend/internal/platform/twilio"
	"github.com/yungbote/aura-backend/internal/temporalx"
)

// Clients holds external providers. Every field except ElevenLabs may be
// nil when its credentials are absent.
type Clients struct {
	OpenAI      openai.Client
	Twilio      twilio.Client
	SendGrid    sendgrid.Client
	ElevenLabs  elevenlabs.Client
	Redis       *goredis.Client
	Temporal    temporalsdkclient.Client
	TemporalCfg temporalx.Config
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if c, err := openai.NewFromEnv(log); err != nil {
		log.Warn("OpenAI disabled; replies fall back and sentiment scores neutral", "error", err)
	} else {
		out.OpenAI = c
	}
	if c, err := twilio.NewFromEnv(log); err != nil {
		log.Error("Twilio disabled; SMS escalations will be recorded as failed", "error", err)
	} else {
		out.Twilio = c
	}
	if c, err := sendgrid.NewFromEnv(log); err != nil {
		log.Info("SendGrid disabled; email channel off", "error", err)
	} else {
		out.SendGrid = c
	}
	out.ElevenLabs = elevenlabs.NewFromEnv(log)

	rdb, err := redisx.NewClientFromEnv(ctx, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	out.Redis = rdb

	if cfg.EscalationMode == EscalationTemporal {
		out.TemporalCfg = temporalx.LoadConfig()
		tc, err := temporalx.NewClient(log, out.TemporalCfg)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init temporal: %w", err)
		}
		if tc == nil {
			log.Warn("ESCALATION_MODE=temporal without TEMPORAL_ADDRESS; using async dispatch")
		}
		out.Temporal = tc
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
