// Package session carries the actor resolved by the auth middleware
// through the request context.
package session

import (
	"blogCMS/internal/models"
	"context"
)

type contextKey struct{}

var actorKey = contextKey{}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor stored in ctx. Anonymous requests get a zero Actor.
func ActorFrom(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorKey).(models.Actor)
	return actor
}
