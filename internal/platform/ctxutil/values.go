package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type key[T any] struct{}

func with[T any](ctx context.Context, v *T) context.Context {
	return context.WithValue(Default(ctx), key[T]{}, v)
}

func get[T any](ctx context.Context) *T {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(key[T]{}).(*T)
	return v
}

// TraceData ties log lines to the OpenTelemetry trace and the X-Request-ID.
type TraceData struct {
	TraceID   string
	RequestID string
}

// RequestData is the authenticated caller.
type RequestData struct {
	UserID uuid.UUID
	Role   string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context { return with(ctx, td) }
func GetTraceData(ctx context.Context) *TraceData { return get[TraceData](ctx) }

func WithRequestData(ctx context.Context, rd *RequestData) context.Context { return with(ctx, rd) }
func GetRequestData(ctx context.Context) *RequestData { return get[RequestData](ctx) }

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
