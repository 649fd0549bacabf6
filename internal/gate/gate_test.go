package gate_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopickup/ecopickup/internal/authctx"
	"github.com/ecopickup/ecopickup/internal/gate"
	"github.com/ecopickup/ecopickup/internal/i18n"
	"github.com/ecopickup/ecopickup/internal/pickup"
	"github.com/ecopickup/ecopickup/internal/view"
)

func text(body string, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func serve(h http.Handler) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/protected", nil))
	return rr
}

func identity(role pickup.Role) authctx.Snapshot {
	return authctx.Resolved(authctx.Identity{UserID: "id-" + string(role), Role: role})
}

type recorder struct{ outcomes []string }

func (r *recorder) ObserveGate(outcome string) { r.outcomes = append(r.outcomes, outcome) }

func TestDecideRoleMembership(t *testing.T) {
	sets := []pickup.RoleSet{
		pickup.NewRoleSet(),
		pickup.NewRoleSet(pickup.RoleUser),
		pickup.NewRoleSet(pickup.RoleDriver, pickup.RoleAdmin),
		pickup.NewRoleSet(pickup.Roles()...),
	}
	for _, allowed := range sets {
		for _, role := range pickup.Roles() {
			want := gate.Unauthorized
			if allowed.Has(role) {
				want = gate.Authorized
			}
			assert.Equal(t, want, gate.Decide(identity(role), allowed), "role %s set %v", role, allowed)

			loading := identity(role)
			loading.Loading = true
			assert.Equal(t, gate.Loading, gate.Decide(loading, allowed))
		}
		assert.Equal(t, gate.Unauthorized, gate.Decide(authctx.Anonymous(), allowed))
		assert.Equal(t, gate.Loading, gate.Decide(authctx.Pending(), allowed))
	}
}

func TestRenderViews(t *testing.T) {
	children := text("secret", http.StatusOK)
	rec := &recorder{}
	g := gate.Gate{
		Allowed:  pickup.NewRoleSet(pickup.RoleAdmin),
		Loading:  text("loading", http.StatusServiceUnavailable),
		Denied:   text("denied", http.StatusForbidden),
		Recorder: rec,
	}

	assert.Equal(t, "secret", serve(g.Render(identity(pickup.RoleAdmin), children)).Body.String())
	assert.Equal(t, "denied", serve(g.Render(identity(pickup.RoleUser), children)).Body.String())
	assert.Equal(t, "denied", serve(g.Render(authctx.Anonymous(), children)).Body.String())
	assert.Equal(t, "loading", serve(g.Render(authctx.Pending(), children)).Body.String())
	assert.Equal(t, []string{"authorized", "unauthorized", "unauthorized", "loading"}, rec.outcomes)

	g.Fallback = text("please sign in", http.StatusUnauthorized)
	rr := serve(g.Render(authctx.Anonymous(), children))
	assert.Equal(t, "please sign in", rr.Body.String())
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRenderDefaults(t *testing.T) {
	g := gate.Gate{Allowed: pickup.NewRoleSet(pickup.RoleUser)}

	rr := serve(g.Render(authctx.Anonymous(), text("secret", http.StatusOK)))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = serve(g.Render(authctx.Pending(), text("secret", http.StatusOK)))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
}

func TestWatcherFollowsSource(t *testing.T) {
	provider := authctx.NewProvider()
	w := gate.Watch(provider, gate.Gate{
		Allowed: pickup.NewRoleSet(pickup.RoleDriver),
		Denied:  text("denied", http.StatusForbidden),
		Loading: text("loading", http.StatusServiceUnavailable),
	}, text("route sheet", http.StatusOK))
	defer w.Close()

	assert.Equal(t, gate.Loading, w.Outcome())
	assert.Equal(t, "loading", serve(w).Body.String())

	provider.Publish(identity(pickup.RoleDriver))
	assert.Equal(t, gate.Authorized, w.Outcome())
	assert.Equal(t, "route sheet", serve(w).Body.String())

	provider.Publish(authctx.Anonymous())
	assert.Equal(t, gate.Unauthorized, w.Outcome())
	assert.Equal(t, "denied", serve(w).Body.String())

	w.Close()
	provider.Publish(identity(pickup.RoleDriver))
	assert.Equal(t, gate.Unauthorized, w.Outcome())
}

func TestWatcherStartsFromCurrentState(t *testing.T) {
	provider := authctx.NewProvider()
	provider.Publish(identity(pickup.RoleUser))
	w := gate.Watch(provider, gate.Gate{Allowed: pickup.NewRoleSet(pickup.RoleUser)}, text("ok", http.StatusOK))
	defer w.Close()
	assert.Equal(t, gate.Authorized, w.Outcome())
}

func TestMiddlewareRequire(t *testing.T) {
	mw := gate.Middleware{}
	handler := mw.Require(pickup.RoleAdmin)(text("admin area", http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code, "no snapshot means auth not resolved")

	for role, want := range map[pickup.Role]int{
		pickup.RoleAdmin:  http.StatusOK,
		pickup.RoleDriver: http.StatusForbidden,
		pickup.RoleUser:   http.StatusForbidden,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(authctx.WithSnapshot(req.Context(), identity(role)))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, want, rr.Code, role)
	}
}

func TestMiddlewareFallback(t *testing.T) {
	handler := gate.Middleware{}.RequireWithFallback(text("login first", http.StatusUnauthorized), pickup.RoleUser)(text("points", http.StatusOK))

	req := httptest.NewRequest(http.MethodGet, "/points", nil)
	req = req.WithContext(authctx.WithSnapshot(req.Context(), authctx.Anonymous()))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "login first", rr.Body.String())
}

func TestPlaceholdersLocalized(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)
	p := gate.NewPlaceholders(engine, i18n.New("en"), nil)

	req := httptest.NewRequest(http.MethodGet, "/admin?lang=id", nil)
	rr := httptest.NewRecorder()
	p.Denied().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "Akses ditolak")
	assert.Contains(t, rr.Body.String(), `lang="id"`)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr = httptest.NewRecorder()
	p.Loading().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("Retry-After"))
	assert.Contains(t, rr.Body.String(), "Checking your session")
}
