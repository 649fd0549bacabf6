// Package dashboard serves the role-gated pickup, points and admin endpoints.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecopickup/ecopickup/internal/authctx"
	"github.com/ecopickup/ecopickup/internal/gate"
	"github.com/ecopickup/ecopickup/internal/kv"
	"github.com/ecopickup/ecopickup/internal/pickup"
	"github.com/ecopickup/ecopickup/internal/platform/httpx"
	"github.com/ecopickup/ecopickup/internal/seed"
)

// Seeder fills or resets the demo data.
type Seeder interface {
	Seed(ctx context.Context) (seed.Report, error)
	Reset(ctx context.Context) (seed.Report, error)
}

// ResetEnqueuer schedules a background demo reset and returns the task ID.
type ResetEnqueuer interface {
	EnqueueDemoReset(ctx context.Context) (string, error)
}

// Handler wires the dashboard routes.
type Handler struct {
	logger *slog.Logger
	repo   *pickup.Repository
	seeder Seeder
	jobs   ResetEnqueuer
	gate   gate.Middleware
}

// NewHandler builds a Handler. jobs may be nil, in which case async resets are
// rejected.
func NewHandler(logger *slog.Logger, repo *pickup.Repository, seeder Seeder, jobs ResetEnqueuer, gates gate.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, repo: repo, seeder: seeder, jobs: jobs, gate: gates}
}

// MountRoutes registers the gated routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.gate.Require(pickup.RoleUser, pickup.RoleDriver, pickup.RoleAdmin)).Get("/pickups", h.listPickups)
	r.With(h.gate.Require(pickup.RoleUser, pickup.RoleAdmin)).Get("/points", h.pointsBalance)
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.gate.Require(pickup.RoleAdmin))
		r.Get("/users", h.listUsers)
		r.Post("/demo/seed", h.seedDemo)
		r.Post("/demo/reset", h.resetDemo)
	})
}

type seedResponse struct {
	seed.Report
	Errors []string `json:"errors,omitempty"`
}

func (h *Handler) listPickups(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context()).Identity
	owner := id.UserID
	if id.Role == pickup.RoleAdmin || id.Role == pickup.RoleDriver {
		owner = ""
	}
	pickups, err := h.repo.ListPickups(r.Context(), owner)
	if err != nil {
		h.respondStoreError(w, "list pickups", err)
		return
	}
	httpx.JSON(w, http.StatusOK, pickups)
}

func (h *Handler) pointsBalance(w http.ResponseWriter, r *http.Request) {
	id := authctx.FromContext(r.Context()).Identity
	userID := id.UserID
	if requested := r.URL.Query().Get("user_id"); requested != "" && requested != userID {
		if id.Role != pickup.RoleAdmin {
			httpx.RespondError(w, fmt.Errorf("%w: balance of another user", httpx.ErrForbidden))
			return
		}
		userID = requested
	}
	balance, err := h.repo.PointsBalance(r.Context(), userID)
	if err != nil {
		h.respondStoreError(w, "points balance", err)
		return
	}
	httpx.JSON(w, http.StatusOK, balance)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.repo.ListUsers(r.Context())
	if err != nil {
		h.respondStoreError(w, "list users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) seedDemo(w http.ResponseWriter, r *http.Request) {
	report, err := h.seeder.Seed(r.Context())
	h.respondReport(w, "seed demo", report, err)
}

func (h *Handler) resetDemo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("async") == "1" {
		if h.jobs == nil {
			httpx.RespondError(w, fmt.Errorf("%w: background jobs disabled", httpx.ErrUnavailable))
			return
		}
		taskID, err := h.jobs.EnqueueDemoReset(r.Context())
		if err != nil {
			h.logger.Error("enqueue demo reset", slog.Any("error", err))
			httpx.RespondError(w, fmt.Errorf("%w: enqueue failed", httpx.ErrUnavailable))
			return
		}
		httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
		return
	}
	report, err := h.seeder.Reset(r.Context())
	h.respondReport(w, "reset demo", report, err)
}

// respondReport answers 200 when only malformed slots were skipped, since the
// report still describes every slot.
func (h *Handler) respondReport(w http.ResponseWriter, op string, report seed.Report, err error) {
	if err != nil && !seed.OnlyMalformed(err) {
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := seedResponse{Report: report}
	if err != nil {
		resp.Errors = splitErrors(err)
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) respondStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, kv.ErrMalformedStoredData) {
		h.logger.Warn(op, slog.Any("error", err))
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrCorruptData, err))
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}

func splitErrors(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		out := make([]string, 0, len(joined.Unwrap()))
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}
