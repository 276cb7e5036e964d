package temporalworker

import (
	"testing"
	"time"

	"github.com/yungbote/aura-backend/internal/platform/logger"
	"github.com/yungbote/aura-backend/internal/temporalx"
)

func TestNewRunnerRequiresClient(t *testing.T) {
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if _, err := NewRunner(log, temporalx.Config{}, nil, nil); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestBackoffCaps(t *testing.T) {
	if backoff(1) != 250*time.Millisecond || backoff(3) != time.Second || backoff(20) != 5*time.Second {
		t.Fatalf("unexpected backoff curve")
	}
}
