package authctx

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/ecopickup/ecopickup/internal/pickup"
	"github.com/ecopickup/ecopickup/internal/shared"
)

// Session keys holding the signed-in identity.
const (
	SessionKeyEmail = "email"
	SessionKeyName  = "full_name"
	SessionKeyRole  = "role"
)

// FromSession resolves the snapshot for sess. A nil session means the session layer
// has not run yet, which reads as Pending.
func FromSession(sess *shared.Session, logger *slog.Logger) Snapshot {
	if sess == nil {
		return Pending()
	}
	userID := strings.TrimSpace(sess.User())
	if userID == "" {
		return Anonymous()
	}
	role, err := pickup.ParseRole(sess.Get(SessionKeyRole))
	if err != nil {
		if logger != nil {
			logger.Warn("session role", slog.String("user_id", userID), slog.Any("error", err))
		}
		return Anonymous()
	}
	return Resolved(Identity{
		UserID:   userID,
		Email:    sess.Get(SessionKeyEmail),
		FullName: sess.Get(SessionKeyName),
		Role:     role,
	})
}

// StoreIdentity writes id into sess.
func StoreIdentity(sess *shared.Session, id Identity) {
	sess.SetUser(id.UserID)
	sess.Set(SessionKeyEmail, id.Email)
	sess.Set(SessionKeyName, id.FullName)
	sess.Set(SessionKeyRole, string(id.Role))
}

// Middleware resolves the auth snapshot from the request session.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := FromSession(shared.SessionFromContext(r.Context()), logger)
			next.ServeHTTP(w, r.WithContext(WithSnapshot(r.Context(), snap)))
		})
	}
}
