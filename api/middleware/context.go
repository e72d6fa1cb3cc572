package middleware

import (
	"context"

	"github.com/google/uuid"
	pkgerrors "github.com/threadkart/threadkart-backend/pkg/errors"
)

type contextKey string

const (
	ctxActorID contextKey = "actor_id"
	ctxRole    contextKey = "actor_role"
)

func ActorIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActorID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ActorUUIDFromContext resolves the authenticated actor as a UUID. Handlers
// behind the auth middleware call this for the buyer or seller identity.
func ActorUUIDFromContext(ctx context.Context) (uuid.UUID, error) {
	raw := ActorIDFromContext(ctx)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor identity")
	}
	return id, nil
}

// WithActor injects the actor identity into the context, used by tests and
// internal dispatch.
func WithActor(ctx context.Context, actorID, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxActorID, actorID)
	return context.WithValue(ctx, ctxRole, role)
}
