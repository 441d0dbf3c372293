package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgAuth "github.com/angelmondragon/procureflow-backend/pkg/auth"
)

type contextKey string

const ctxActor contextKey = "actor"

// ActorFromContext returns the authenticated staff member, or the zero Actor
// when the request was not authenticated.
func ActorFromContext(ctx context.Context) pkgAuth.Actor {
	if ctx == nil {
		return pkgAuth.Actor{}
	}
	if v, ok := ctx.Value(ctxActor).(pkgAuth.Actor); ok {
		return v
	}
	return pkgAuth.Actor{}
}

// UserIDFromContext returns the authenticated user id as a string.
func UserIDFromContext(ctx context.Context) string {
	actor := ActorFromContext(ctx)
	if actor.UserID == uuid.Nil {
		return ""
	}
	return actor.UserID.String()
}

// WithActor injects the actor into the context.
func WithActor(ctx context.Context, actor pkgAuth.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
