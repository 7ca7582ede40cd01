// Package requestcontext carries request-scoped values (request ID, caller
// identity, client metadata, request time) through context.Context.
package requestcontext

import (
	"context"
	"time"

	id "vaxledger/pkg/domain"
)

type (
	contextKeyRequestID   struct{}
	contextKeyCaller      struct{}
	contextKeyAdminActor  struct{}
	contextKeyClientIP    struct{}
	contextKeyUserAgent   struct{}
	contextKeyRequestTime struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the correlation ID or "" outside of HTTP requests.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}

// WithCaller stores the authenticated principal of the current call.
func WithCaller(ctx context.Context, caller id.Address) context.Context {
	return context.WithValue(ctx, contextKeyCaller{}, caller)
}

func Caller(ctx context.Context) id.Address {
	if v, ok := ctx.Value(contextKeyCaller{}).(id.Address); ok {
		return v
	}
	return ""
}

func WithAdminActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, contextKeyAdminActor{}, actor)
}

func AdminActor(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyAdminActor{}).(string); ok {
		return v
	}
	return ""
}

func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, contextKeyClientIP{}, clientIP)
	return context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return v
	}
	return ""
}

func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyUserAgent{}).(string); ok {
		return v
	}
	return ""
}

// WithTime pins "now" for the rest of the call chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
