package gate

import (
	"log/slog"
	"net/http"

	"github.com/ecopickup/ecopickup/internal/authctx"
	"github.com/ecopickup/ecopickup/internal/pickup"
)

// Middleware gates chi routes on the request's auth snapshot.
type Middleware struct {
	Loading  http.Handler
	Denied   http.Handler
	Recorder Recorder
	Logger   *slog.Logger
}

// Require lets the request through only when the caller holds one of roles.
func (m Middleware) Require(roles ...pickup.Role) func(http.Handler) http.Handler {
	return m.RequireWithFallback(nil, roles...)
}

// RequireWithFallback behaves like Require but serves fallback to unauthorized
// callers instead of the denial notice.
func (m Middleware) RequireWithFallback(fallback http.Handler, roles ...pickup.Role) func(http.Handler) http.Handler {
	g := Gate{
		Allowed:  pickup.NewRoleSet(roles...),
		Fallback: fallback,
		Loading:  m.Loading,
		Denied:   m.Denied,
		Recorder: m.Recorder,
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := authctx.FromContext(r.Context())
			view, outcome := g.resolve(snap, next)
			if outcome == Unauthorized && m.Logger != nil {
				attrs := []any{slog.String("path", r.URL.Path)}
				if snap.Identity != nil {
					attrs = append(attrs, slog.String("user_id", snap.Identity.UserID), slog.String("role", string(snap.Identity.Role)))
				}
				m.Logger.Info("gate denied", attrs...)
			}
			view.ServeHTTP(w, r)
		})
	}
}
