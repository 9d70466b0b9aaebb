// Package identity describes who is making a request.
package identity

import (
	"context"
	"errors"

	"trackshare/internal/store"
)

// ErrUnauthenticated is returned when an operation needs a logged-in caller.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is either Anonymous or Authenticated(User). The zero value is
// Anonymous.
type Identity struct {
	user *store.User
}

// Anonymous returns the identity of a caller without credentials.
func Anonymous() Identity {
	return Identity{}
}

// Authenticated returns the identity of a logged-in user.
func Authenticated(user store.User) Identity {
	return Identity{user: &user}
}

// User returns the caller and true, or false for anonymous callers.
func (i Identity) User() (store.User, bool) {
	if i.user == nil {
		return store.User{}, false
	}
	return *i.user, true
}

// IsAnonymous reports whether the caller has no identity.
func (i Identity) IsAnonymous() bool {
	return i.user == nil
}

// Owns reports whether the caller is the given user. Anonymous callers own
// nothing.
func (i Identity) Owns(owner store.User) bool {
	return i.user != nil && i.user.ID == owner.ID
}

type contextKey struct{}

// WithIdentity attaches id to ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity attached to ctx, or Anonymous.
func FromContext(ctx context.Context) Identity {
	if id, ok := ctx.Value(contextKey{}).(Identity); ok {
		return id
	}
	return Anonymous()
}
