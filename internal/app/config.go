package app

import (
	"strings"
	"time"

	"github.com/yungbote/aura-backend/internal/platform/envutil"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

type EscalationMode string

const (
	// EscalationSync runs decision and dispatch before the chat reply returns.
	EscalationSync     EscalationMode = "sync"
	EscalationAsync    EscalationMode = "async"
	EscalationTemporal EscalationMode = "temporal"
)

type Config struct {
	Port            string
	Environment     string
	Version         string
	ShutdownTimeout time.Duration

	JWTSecret string
	JWTIssuer string

	CORSOrigins   []string
	PublicBaseURL string

	EscalationMode   EscalationMode
	ChannelTimeout   time.Duration
	RedactContent    bool
	CooldownDuration time.Duration

	MetricsAddr string
	// RunWorker starts the Temporal worker in-process when mode is temporal.
	RunWorker bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:            envutil.String("PORT", "8080"),
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
		ShutdownTimeout: envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 30*time.Second),

		JWTSecret: envutil.String("JWT_SECRET", ""),
		JWTIssuer: envutil.String("JWT_ISSUER", ""),

		CORSOrigins:   splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		PublicBaseURL: envutil.String("PUBLIC_BASE_URL", ""),

		EscalationMode:   parseMode(log, envutil.String("ESCALATION_MODE", string(EscalationAsync))),
		ChannelTimeout:   envutil.Seconds("ESCALATION_CHANNEL_TIMEOUT_SECONDS", 20*time.Second),
		RedactContent:    envutil.Bool("NOTIFY_REDACT_CONTENT", true),
		CooldownDuration: envutil.Seconds("ESCALATION_COOLDOWN_SECONDS", 0),

		MetricsAddr: envutil.String("METRICS_ADDR", ":9090"),
		RunWorker:   envutil.Bool("TEMPORAL_WORKER_ENABLED", true),
	}
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = 20 * time.Second
	}
	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is not set; every authenticated request will be rejected")
	}
	if cfg.PublicBaseURL == "" {
		log.Warn("PUBLIC_BASE_URL is not set; provider status callbacks are disabled")
	}
	return cfg
}

func parseMode(log *logger.Logger, raw string) EscalationMode {
	switch m := EscalationMode(strings.ToLower(strings.TrimSpace(raw))); m {
	case EscalationSync, EscalationAsync, EscalationTemporal:
		return m
	default:
		log.Warn("Unknown ESCALATION_MODE, using async", "value", raw)
		return EscalationAsync
	}
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
