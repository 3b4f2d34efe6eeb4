// Package middleware provides HTTP middleware shared by the REST surface.
package middleware

import (
	"context"

	"github.com/domunity/backend/internal/app/domain/user"
)

type contextKey string

const (
	userKey    contextKey = "auth_user"
	traceIDKey contextKey = "trace_id"
)

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userKey).(user.User)
	return u, ok
}

// WithTraceID stores the request trace ID in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext returns the request trace ID, if any.
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}
