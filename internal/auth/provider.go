// Package auth identifies the actor behind a request.
//
// The services attribute every audit event to an actor but never check
// roles; deciding who may call what is left to the transport.
package auth

import (
	"context"
	"errors"

	"myimpact/internal/model"
)

// ErrNoActor is returned when a request carries no identity.
var ErrNoActor = errors.New("no authenticated actor")

// Provider resolves the actor for a request context.
type Provider interface {
	Actor(ctx context.Context) (model.Actor, error)
}

// DevAdmin is the fixed administrator used when authentication is off.
var DevAdmin = model.Actor{
	UserID: "admin-001",
	Name:   "Admin User",
	Role:   model.RoleUniversityAdmin,
	Email:  "admin@columbia.edu",
}

// StaticProvider always returns the same actor.
type StaticProvider struct {
	actor model.Actor
}

// NewStaticProvider returns a provider for actor, or DevAdmin when actor is zero.
func NewStaticProvider(actor model.Actor) StaticProvider {
	if actor.UserID == "" {
		actor = DevAdmin
	}
	return StaticProvider{actor: actor}
}

func (p StaticProvider) Actor(context.Context) (model.Actor, error) {
	return p.actor, nil
}

// TokenProvider returns the actor BearerAuth stored on the context.
type TokenProvider struct{}

func (TokenProvider) Actor(ctx context.Context) (model.Actor, error) {
	actor, ok := ActorFrom(ctx)
	if !ok {
		return model.Actor{}, ErrNoActor
	}
	return actor, nil
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom extracts the actor stored by WithActor.
func ActorFrom(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}
