// Package handler serves the session archive to operators over HTTP. It is
// read-only: sessions are only ever written by the run and simulate commands.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	appI18n "github.com/pavelanni/rapm/internal/i18n"
	"github.com/pavelanni/rapm/internal/results"
	"github.com/pavelanni/rapm/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store         *store.Store
	secureCookies bool
}

// New creates a new Handler.
func New(s *store.Store, secureCookies bool) *Handler {
	return &Handler{store: s, secureCookies: secureCookies}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Post("/api/login", h.handleLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/logout", h.handleLogout)
		r.Get("/api/sessions", h.handleListSessions)
		r.Get("/api/sessions/{sessionID}", h.handleGetSession)
		r.Get("/api/sessions/{sessionID}/results.csv", h.handleSessionCSV)
		r.Get("/api/export", h.handleExport)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.SessionCount()
	if err != nil {
		h.serverError(w, r, "count sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": count,
		"message":  appI18n.Tp(r.Context(), "SessionsArchived", count),
	})
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.ListSessions()
	if err != nil {
		h.serverError(w, r, "list sessions", err)
		return
	}
	if sessions == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.store.GetSession(id)
	if err != nil {
		h.serverError(w, r, "get session", err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, appI18n.T(r.Context(), "SessionNotFound"))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *Handler) handleSessionCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.store.GetSession(id)
	if err != nil {
		h.serverError(w, r, "get session", err)
		return
	}
	if sess == nil {
		writeError(w, http.StatusNotFound, appI18n.T(r.Context(), "SessionNotFound"))
		return
	}

	name := fmt.Sprintf("raven_results_%s.csv", sess.StartedAt.Format(results.TimestampLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := results.WriteRows(w, sess.Responses); err != nil {
		slog.Error("write csv", "session", id, "error", err)
	}
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	export, err := h.store.ExportAllSessions()
	if err != nil {
		h.serverError(w, r, "export sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, export)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, appI18n.T(r.Context(), "InternalError"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
