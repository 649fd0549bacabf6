package authctx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopickup/ecopickup/internal/authctx"
	"github.com/ecopickup/ecopickup/internal/pickup"
	"github.com/ecopickup/ecopickup/internal/shared"
)

func TestProviderNotifiesSubscribersInOrder(t *testing.T) {
	p := authctx.NewProvider()
	assert.True(t, p.Current().Loading)

	var got []string
	cancelA := p.Subscribe(func(s authctx.Snapshot) { got = append(got, "a") })
	p.Subscribe(func(s authctx.Snapshot) { got = append(got, "b") })

	p.Publish(authctx.Anonymous())
	assert.Equal(t, []string{"a", "b"}, got)
	assert.False(t, p.Current().Loading)

	cancelA()
	cancelA()
	p.Publish(authctx.Resolved(authctx.Identity{UserID: "u", Role: pickup.RoleUser}))
	assert.Equal(t, []string{"a", "b", "b"}, got)
	require.NotNil(t, p.Current().Identity)
	assert.Equal(t, pickup.RoleUser, p.Current().Identity.Role)
}

func TestSubscriberMayUnsubscribeDuringPublish(t *testing.T) {
	p := authctx.NewProvider()
	calls := 0
	var cancel func()
	cancel = p.Subscribe(func(authctx.Snapshot) {
		calls++
		cancel()
	})
	p.Publish(authctx.Anonymous())
	p.Publish(authctx.Anonymous())
	assert.Equal(t, 1, calls)
}

func TestFromContextDefaultsToPending(t *testing.T) {
	assert.Equal(t, authctx.Pending(), authctx.FromContext(context.Background()))

	ctx := authctx.WithSnapshot(context.Background(), authctx.Anonymous())
	assert.Equal(t, authctx.Anonymous(), authctx.FromContext(ctx))
}

func TestFromSession(t *testing.T) {
	assert.True(t, authctx.FromSession(nil, nil).Loading)

	sess := &shared.Session{ID: "s"}
	snap := authctx.FromSession(sess, nil)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Identity)

	authctx.StoreIdentity(sess, authctx.Identity{UserID: "driver-1", Email: "driver@ecopickup.local", Role: pickup.RoleDriver})
	snap = authctx.FromSession(sess, nil)
	require.NotNil(t, snap.Identity)
	assert.Equal(t, "driver-1", snap.Identity.UserID)
	assert.Equal(t, pickup.RoleDriver, snap.Identity.Role)

	sess.Set(authctx.SessionKeyRole, "root")
	assert.Nil(t, authctx.FromSession(sess, nil).Identity)
}

func TestMiddlewareStoresSnapshot(t *testing.T) {
	sess := &shared.Session{ID: "s"}
	authctx.StoreIdentity(sess, authctx.Identity{UserID: "admin-1", Role: pickup.RoleAdmin})

	var seen authctx.Snapshot
	handler := authctx.Middleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = authctx.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen.Identity)
	assert.Equal(t, pickup.RoleAdmin, seen.Identity.Role)
}
