// Package http serves the agent's HTTP surface: the VK Callback API
// endpoint, health and metrics probes and a read-only session inspector.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aretw0/kinder/internal/logging"
	"github.com/aretw0/kinder/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Sessions is the part of the session store exposed for debugging.
type Sessions interface {
	Get(userID int64) (*domain.Session, bool)
	List() []int64
	Delete(userID int64)
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Config lists the components to mount. Nil fields disable their routes.
type Config struct {
	Callback http.Handler
	Metrics  http.Handler
	Sessions Sessions
	Health   map[string]HealthCheck
	Logger   *slog.Logger
}

// SessionView is the JSON shape of a cached session.
type SessionView struct {
	UserID   int64              `json:"user_id"`
	Step     domain.Step        `json:"step"`
	Criteria domain.Criteria    `json:"criteria"`
	Offset   int                `json:"offset"`
	Shown    int                `json:"shown"`
	Pending  []domain.Candidate `json:"pending,omitempty"`
}

// NewHandler builds the router.
func NewHandler(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler(cfg.Health, logger))

	if cfg.Callback != nil {
		r.Post("/callback", cfg.Callback.ServeHTTP)
	}
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}
	if cfg.Sessions != nil {
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"users": cfg.Sessions.List()}, logger)
			})
			r.Get("/{userID}", func(w http.ResponseWriter, r *http.Request) {
				id, ok := userID(w, r)
				if !ok {
					return
				}
				sess, found := cfg.Sessions.Get(id)
				if !found {
					http.Error(w, domain.ErrSessionNotFound.Error(), http.StatusNotFound)
					return
				}
				writeJSON(w, http.StatusOK, SessionView{
					UserID:   sess.UserID,
					Step:     sess.Step,
					Criteria: sess.Criteria,
					Offset:   sess.Offset,
					Shown:    len(sess.Shown),
					Pending:  sess.PendingBatch,
				}, logger)
			})
			r.Delete("/{userID}", func(w http.ResponseWriter, r *http.Request) {
				id, ok := userID(w, r)
				if !ok {
					return
				}
				cfg.Sessions.Delete(id)
				w.WriteHeader(http.StatusNoContent)
			})
		})
	}
	return r
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func healthHandler(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		report := map[string]string{}
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				report[name] = err.Error()
				logger.Warn("health check failed", "check", name, "err", err)
				continue
			}
			report[name] = "ok"
		}
		writeJSON(w, status, map[string]any{"status": http.StatusText(status), "checks": report}, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
