package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopickup/ecopickup/internal/shared"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return shared.NewSessionManager(client, "test_session", "", "test-secret", time.Hour, false), mr
}

func cookieFrom(t *testing.T, res *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("user-1")
	sess.Set("role", "user")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	cookie := cookieFrom(t, res)
	assert.True(t, strings.HasPrefix(cookie.Value, sess.ID+"."), cookie.Value)
	assert.True(t, mr.Exists("session:"+sess.ID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "user-1", loaded.User())
	assert.Equal(t, "user", loaded.Get("role"))
}

func TestUntouchedSessionIsNotPersisted(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, sess))
	assert.Empty(t, res.Result().Cookies())
	assert.Empty(t, mr.Keys())
}

func TestRenewAndDestroy(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("user-1")
	first := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, first, sess))
	oldID := sess.ID

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookieFrom(t, first))
	loaded, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sm.Renew(loaded)
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), loaded))
	assert.NotEqual(t, oldID, loaded.ID)
	assert.False(t, mr.Exists("session:"+oldID))
	assert.True(t, mr.Exists("session:"+loaded.ID))

	sm.Destroy(loaded)
	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, loaded))
	assert.False(t, mr.Exists("session:"+loaded.ID))
	assert.Equal(t, -1, cookieFrom(t, res).MaxAge)
}

func TestUnknownCookieStartsFreshSession(t *testing.T) {
	sm, _ := newManager(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: "expired"})

	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEqual(t, "expired", sess.ID)
	assert.Empty(t, sess.User())
}

func TestForgedCookieStartsFreshSession(t *testing.T) {
	sm, mr := newManager(t)
	ctx := context.Background()

	sess, err := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	sess.SetUser("admin-1")
	require.NoError(t, sm.Commit(ctx, httptest.NewRecorder(), sess))
	require.True(t, mr.Exists("session:"+sess.ID))

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	other := shared.NewSessionManager(client, "test_session", "", "another-secret", time.Hour, false)
	forged := httptest.NewRecorder()
	sess.SetUser("admin-1")
	require.NoError(t, other.Commit(ctx, forged, sess))

	for _, value := range []string{sess.ID, sess.ID + ".", cookieFrom(t, forged).Value} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: sm.CookieName(), Value: value})
		loaded, err := sm.Load(ctx, req)
		require.NoError(t, err)
		assert.NotEqual(t, sess.ID, loaded.ID, value)
		assert.Empty(t, loaded.User(), value)
	}
}

func TestSessionContext(t *testing.T) {
	assert.Nil(t, shared.SessionFromContext(context.Background()))
	sess := &shared.Session{ID: "abc"}
	ctx := shared.ContextWithSession(context.Background(), sess)
	assert.Same(t, sess, shared.SessionFromContext(ctx))
}
