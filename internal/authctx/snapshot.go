// Package authctx exposes the authentication state consumed by access gates.
package authctx

import (
	"context"

	"github.com/ecopickup/ecopickup/internal/pickup"
)

// Identity describes the authenticated account.
type Identity struct {
	UserID   string      `json:"userId"`
	Email    string      `json:"email"`
	FullName string      `json:"fullName,omitempty"`
	Role     pickup.Role `json:"role"`
}

// Snapshot is a point-in-time view of the auth state. Identity is nil for anonymous
// visitors; Loading is true while the state is still being resolved.
type Snapshot struct {
	Identity *Identity `json:"identity"`
	Loading  bool      `json:"loading"`
}

// Pending returns a snapshot for an auth state that is still loading.
func Pending() Snapshot {
	return Snapshot{Loading: true}
}

// Anonymous returns a resolved snapshot without identity.
func Anonymous() Snapshot {
	return Snapshot{}
}

// Resolved returns a resolved snapshot for id.
func Resolved(id Identity) Snapshot {
	return Snapshot{Identity: &id}
}

type snapshotContextKey struct{}

// WithSnapshot stores snap in ctx.
func WithSnapshot(ctx context.Context, snap Snapshot) context.Context {
	return context.WithValue(ctx, snapshotContextKey{}, snap)
}

// FromContext returns the snapshot stored in ctx, or Pending when the auth state has
// not been resolved for this request.
func FromContext(ctx context.Context) Snapshot {
	snap, ok := ctx.Value(snapshotContextKey{}).(Snapshot)
	if !ok {
		return Pending()
	}
	return snap
}
