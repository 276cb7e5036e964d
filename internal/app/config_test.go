package app

import (
	"testing"
	"time"

	"github.com/yungbote/aura-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"ESCALATION_MODE", "ESCALATION_CHANNEL_TIMEOUT_SECONDS", "NOTIFY_REDACT_CONTENT", "ESCALATION_COOLDOWN_SECONDS", "CORS_ALLOWED_ORIGINS", "PORT"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(testLogger(t))
	if cfg.EscalationMode != EscalationAsync {
		t.Fatalf("mode = %s", cfg.EscalationMode)
	}
	if cfg.ChannelTimeout != 20*time.Second {
		t.Fatalf("channel timeout = %s", cfg.ChannelTimeout)
	}
	if !cfg.RedactContent {
		t.Fatalf("redaction should default on")
	}
	if cfg.CooldownDuration != 0 {
		t.Fatalf("cooldown should default off, got %s", cfg.CooldownDuration)
	}
	if cfg.Port != "8080" || len(cfg.CORSOrigins) != 0 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ESCALATION_MODE", " Temporal ")
	t.Setenv("ESCALATION_CHANNEL_TIMEOUT_SECONDS", "5")
	t.Setenv("NOTIFY_REDACT_CONTENT", "false")
	t.Setenv("ESCALATION_COOLDOWN_SECONDS", "600")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, ,https://b.test")

	cfg := LoadConfig(testLogger(t))
	if cfg.EscalationMode != EscalationTemporal {
		t.Fatalf("mode = %s", cfg.EscalationMode)
	}
	if cfg.ChannelTimeout != 5*time.Second || cfg.RedactContent || cfg.CooldownDuration != 10*time.Minute {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.test" {
		t.Fatalf("origins = %v", cfg.CORSOrigins)
	}
}

func TestUnknownModeFallsBackToAsync(t *testing.T) {
	if got := parseMode(testLogger(t), "carrier-pigeon"); got != EscalationAsync {
		t.Fatalf("mode = %s", got)
	}
}
