package gate

import (
	"net/http"
	"sync"

	"github.com/ecopickup/ecopickup/internal/authctx"
)

// Watcher keeps a gate's rendered view in sync with an auth source. The view is
// recomputed on every published snapshot.
type Watcher struct {
	gate     Gate
	children http.Handler

	mu      sync.RWMutex
	outcome Outcome
	view    http.Handler
	cancel  func()
}

// Watch subscribes g to src and renders children whenever the source authorizes it.
func Watch(src authctx.Source, g Gate, children http.Handler) *Watcher {
	w := &Watcher{gate: g, children: children}
	w.cancel = src.Subscribe(w.update)
	w.update(src.Current())
	return w
}

func (w *Watcher) update(snap authctx.Snapshot) {
	view, outcome := w.gate.resolve(snap, w.children)
	w.mu.Lock()
	w.view = view
	w.outcome = outcome
	w.mu.Unlock()
}

// Outcome returns the latest decision.
func (w *Watcher) Outcome() Outcome {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.outcome
}

// ServeHTTP serves the currently rendered view.
func (w *Watcher) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	w.mu.RLock()
	view := w.view
	w.mu.RUnlock()
	view.ServeHTTP(rw, r)
}

// Close stops following the source.
func (w *Watcher) Close() {
	if w.cancel != nil {
		w.cancel()
	}
}
