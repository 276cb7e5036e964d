package escalation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/aura-backend/internal/domain"
)

// Cooldown gates repeat escalations for the same patient and alert type.
// Acquire reports whether this escalation may proceed. Release gives the
// window back when the escalation never produced an alert.
type Cooldown interface {
	Acquire(ctx context.Context, patientID uuid.UUID, alertType types.AlertType) (bool, error)
	Release(ctx context.Context, patientID uuid.UUID, alertType types.AlertType) error
}

func cooldownKey(patientID uuid.UUID, alertType types.AlertType) string {
	return fmt.Sprintf("aura:escalation:cooldown:%s:%s", patientID, alertType)
}

type MemoryCooldown struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	until map[string]time.Time
}

func NewMemoryCooldown(ttl time.Duration) *MemoryCooldown {
	return &MemoryCooldown{ttl: ttl, now: time.Now, until: map[string]time.Time{}}
}

func (c *MemoryCooldown) Acquire(ctx context.Context, patientID uuid.UUID, alertType types.AlertType) (bool, error) {
	key := cooldownKey(patientID, alertType)
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if until, ok := c.until[key]; ok && now.Before(until) {
		return false, nil
	}
	c.until[key] = now.Add(c.ttl)
	return true, nil
}

func (c *MemoryCooldown) Release(ctx context.Context, patientID uuid.UUID, alertType types.AlertType) error {
	c.mu.Lock()
	delete(c.until, cooldownKey(patientID, alertType))
	c.mu.Unlock()
	return nil
}

// RedisCooldown shares the window across replicas with SET NX EX.
type RedisCooldown struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisCooldown(rdb *goredis.Client, ttl time.Duration) *RedisCooldown {
	return &RedisCooldown{rdb: rdb, ttl: ttl}
}

func (c *RedisCooldown) Acquire(ctx context.Context, patientID uuid.UUID, alertType types.AlertType) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, cooldownKey(patientID, alertType), time.Now().UTC().Format(time.RFC3339), c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown setnx: %w", err)
	}
	return ok, nil
}

func (c *RedisCooldown) Release(ctx context.Context, patientID uuid.UUID, alertType types.AlertType) error {
	if err := c.rdb.Del(ctx, cooldownKey(patientID, alertType)).Err(); err != nil {
		return fmt.Errorf("cooldown del: %w", err)
	}
	return nil
}
