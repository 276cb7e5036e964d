package ctxutil

import "context"

// Detach keeps the values of ctx (trace data, request data) but drops its
// cancellation and deadline. Work started from a request that must outlive
// the request uses this.
func Detach(ctx context.Context) context.Context {
	return context.WithoutCancel(Default(ctx))
}
