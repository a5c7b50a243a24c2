// Package auth resolves request credentials into caller identities.
// Tokens are issued elsewhere; this package only verifies them.
package auth

import "context"

// Identity is the resolved caller. The zero value is anonymous.
type Identity struct {
	UserID string
}

// Anonymous is the identity of an unauthenticated caller.
var Anonymous = Identity{}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by the auth middleware,
// or Anonymous when none was resolved.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(contextKey{}).(Identity); ok {
		return id
	}
	return Anonymous
}
