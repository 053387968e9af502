package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	appI18n "github.com/pavelanni/rapm/internal/i18n"
	"github.com/pavelanni/rapm/internal/model"
	"github.com/pavelanni/rapm/internal/store"
)

const tokenCookieName = "rapm_token"

// ErrNoOperator is returned by SeedOperator when no account exists and no
// password was given.
var ErrNoOperator = errors.New("operator password is required: set --admin-password or RAPM_ADMIN_PASSWORD")

type operatorKey struct{}

// OperatorFromContext returns the authenticated operator, if any.
func OperatorFromContext(ctx context.Context) *model.Operator {
	op, _ := ctx.Value(operatorKey{}).(*model.Operator)
	return op
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// requireAuth accepts a bearer token or the login cookie.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := requestToken(r)
		if token == "" {
			h.unauthorized(w, r)
			return
		}

		t, err := h.store.GetAuthToken(token)
		if err != nil {
			slog.Error("failed to get auth token", "error", err)
			h.unauthorized(w, r)
			return
		}
		if t == nil {
			h.unauthorized(w, r)
			return
		}

		op, err := h.store.GetOperatorByID(t.OperatorID)
		if err != nil || op == nil || !op.Active {
			h.unauthorized(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), operatorKey{}, op)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c, err := r.Cookie(tokenCookieName); err == nil {
		return c.Value
	}
	return ""
}

func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="rapm"`)
	writeError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "Unauthorized"))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	}

	op, err := h.store.GetOperatorByUsername(req.Username)
	if err != nil {
		h.serverError(w, r, "get operator", err)
		return
	}
	if op == nil || !op.Active {
		slog.Warn("login failed: unknown or inactive operator", "username", req.Username)
		writeError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "InvalidCredentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed: wrong password", "username", req.Username)
		writeError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "InvalidCredentials"))
		return
	}

	token, err := h.store.CreateAuthToken(op.ID)
	if err != nil {
		h.serverError(w, r, "create auth token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(store.AuthTokenTTL.Seconds()),
	})
	slog.Info("operator logged in", "username", op.Username)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresIn: int(store.AuthTokenTTL.Seconds())})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteAuthToken(requestToken(r)); err != nil {
		slog.Error("failed to delete auth token", "error", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		MaxAge:   -1,
	})
	if op := OperatorFromContext(r.Context()); op != nil {
		slog.Info("operator logged out", "username", op.Username)
	}
	w.WriteHeader(http.StatusNoContent)
}

// SeedOperator makes sure the named operator exists with the given
// password. An empty password leaves existing accounts untouched and fails
// only when there are none.
func SeedOperator(s *store.Store, username, password string) error {
	if password == "" {
		count, err := s.OperatorCount()
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrNoOperator
		}
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.UpsertOperator(username, string(hash)); err != nil {
		return err
	}
	// Logins made with an earlier password stop working.
	revoked, err := s.RevokeOperatorTokens(username)
	if err != nil {
		return err
	}
	slog.Info("seeded operator", "username", username, "revoked_tokens", revoked)
	return nil
}
