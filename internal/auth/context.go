package auth

import (
	"context"

	"truefund.org/internal/fund"
)

type userContextKey struct{}

// ContextWithUser attaches the authenticated user to the context.
func ContextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey{}, &u)
}

// UserFromContext extracts the authenticated user from the context.
func UserFromContext(ctx context.Context) (User, bool) {
	if ctx == nil {
		return User{}, false
	}
	v, ok := ctx.Value(userContextKey{}).(*User)
	if !ok || v == nil {
		return User{}, false
	}
	return *v, true
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	u, ok := UserFromContext(ctx)
	if !ok || u.ID == "" {
		return "", false
	}
	return u.ID, true
}

// ActorFromContext returns the gate actor for the caller; anonymous callers get the
// zero Actor.
func ActorFromContext(ctx context.Context) fund.Actor {
	u, _ := UserFromContext(ctx)
	return u.Actor()
}
