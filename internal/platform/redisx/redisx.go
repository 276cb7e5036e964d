package redisx

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/aura-backend/internal/platform/envutil"
	"github.com/yungbote/aura-backend/internal/platform/logger"
)

// NewClientFromEnv returns nil, nil when REDIS_ADDR is unset.
func NewClientFromEnv(ctx context.Context, log *logger.Logger) (*goredis.Client, error) {
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		return nil, nil
	}
	return NewClient(ctx, log, &goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})
}

func NewClient(ctx context.Context, log *logger.Logger, opts *goredis.Options) (*goredis.Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if opts == nil || strings.TrimSpace(opts.Addr) == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Redis connected", "addr", opts.Addr)
	return rdb, nil
}

// Publisher JSON-encodes payloads onto Redis pub/sub channels.
type Publisher struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewPublisher(log *logger.Logger, rdb *goredis.Client) *Publisher {
	return &Publisher{log: log.With("service", "RedisPublisher"), rdb: rdb}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload any) error {
	if p == nil || p.rdb == nil {
		return fmt.Errorf("redis publisher not initialized")
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	n, err := p.rdb.Publish(ctx, channel, raw).Result()
	if err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	p.log.Debug("Published event", "channel", channel, "receivers", n)
	return nil
}

// Subscribe forwards raw payloads from channel to onMsg until ctx ends.
// Subscriber binds Subscribe to a client for callers that take an interface.
type Subscriber struct {
	log *logger.Logger
	rdb *goredis.Client
}

func NewSubscriber(log *logger.Logger, rdb *goredis.Client) *Subscriber {
	return &Subscriber{log: log.With("component", "RedisSubscriber"), rdb: rdb}
}

func (s *Subscriber) Subscribe(ctx context.Context, channel string, onMsg func([]byte)) error {
	return Subscribe(ctx, s.log, s.rdb, channel, onMsg)
}

func Subscribe(ctx context.Context, log *logger.Logger, rdb *goredis.Client, channel string, onMsg func([]byte)) error {
	if rdb == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	sub := rdb.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				onMsg([]byte(m.Payload))
			}
		}
	}()
	log.Debug("Subscribed", "channel", channel)
	return nil
}
