// Package gate decides whether protected content may be rendered for the current
// auth state. It is a convenience gate for the UI, not a security boundary.
package gate

import (
	"net/http"

	"github.com/ecopickup/ecopickup/internal/authctx"
	"github.com/ecopickup/ecopickup/internal/pickup"
)

// Outcome is the state the gate resolves to.
type Outcome int

// Gate outcomes.
const (
	Loading Outcome = iota
	Unauthorized
	Authorized
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "loading"
	case Unauthorized:
		return "unauthorized"
	case Authorized:
		return "authorized"
	}
	return "unknown"
}

// Decide maps a snapshot onto an outcome. An empty allowed set denies everyone.
func Decide(snap authctx.Snapshot, allowed pickup.RoleSet) Outcome {
	if snap.Loading {
		return Loading
	}
	if snap.Identity == nil || !allowed.Has(snap.Identity.Role) {
		return Unauthorized
	}
	return Authorized
}

// Recorder receives gate decisions.
type Recorder interface {
	ObserveGate(outcome string)
}

// Gate renders one of three views depending on the auth snapshot. Nil Loading and
// Denied views fall back to plain-text placeholders.
type Gate struct {
	Allowed  pickup.RoleSet
	Fallback http.Handler
	Loading  http.Handler
	Denied   http.Handler
	Recorder Recorder
}

// Render returns the view for snap: children unmodified when authorized, Fallback
// (or the denial notice) when unauthorized, and the loading view otherwise.
func (g Gate) Render(snap authctx.Snapshot, children http.Handler) http.Handler {
	view, _ := g.resolve(snap, children)
	return view
}

func (g Gate) resolve(snap authctx.Snapshot, children http.Handler) (http.Handler, Outcome) {
	outcome := Decide(snap, g.Allowed)
	if g.Recorder != nil {
		g.Recorder.ObserveGate(outcome.String())
	}
	switch outcome {
	case Authorized:
		return children, outcome
	case Unauthorized:
		if g.Fallback != nil {
			return g.Fallback, outcome
		}
		if g.Denied != nil {
			return g.Denied, outcome
		}
		return defaultDenied, outcome
	default:
		if g.Loading != nil {
			return g.Loading, outcome
		}
		return defaultLoading, outcome
	}
}

var (
	defaultDenied = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "access denied", http.StatusForbidden)
	})
	defaultLoading = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		http.Error(w, "loading", http.StatusServiceUnavailable)
	})
)
