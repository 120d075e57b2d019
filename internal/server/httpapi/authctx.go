package httpapi

import (
	"context"

	"github.com/and161185/taskhub/internal/model"
)

type ctxKey string

const (
	identityKey  ctxKey = "taskhub.identity"
	requestIDKey ctxKey = "taskhub.requestID"
)

// WithIdentity stores the authenticated caller in context.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromCtx fetches the authenticated caller from context.
func IdentityFromCtx(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	return id, ok && id.UserID > 0
}

// WithRequestID stores the request id in context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx returns the request id or "".
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
