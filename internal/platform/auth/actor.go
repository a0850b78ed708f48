// Package auth supplies the acting user's identity to the rest of the
// service. Identity is resolved from the incoming request (JWT in
// production, fixed defaults in development) and carried on the context;
// domain services only ever see an Actor, never a token.
package auth

import "context"

type contextKey string

const actorKey contextKey = "actor"

// Actor identifies the authenticated user making a request. ID is the token
// subject and is what gets stamped into "updated_by" columns.
type Actor struct {
	ID    string
	Name  string
	Roles []string
}

// HasRole reports whether the actor holds the given role. The admin role
// implies every other role.
func (a Actor) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role || r == "admin" {
			return true
		}
	}
	return false
}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext returns the actor on the context, or a zero Actor when
// the request is unauthenticated.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey).(Actor)
	return a
}
