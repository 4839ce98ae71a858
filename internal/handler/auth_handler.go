package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"user-service/internal/middleware"
	"user-service/internal/model"
	"user-service/internal/service"
	"user-service/pkg/apierror"
)

// AuthHandler is the stateless JSON token surface. Unlike the session
// surface it may return coarse machine-readable failure codes, but never
// reveals which credential field was wrong.
type AuthHandler struct {
	auth   *service.AuthService
	tokens *service.TokenService
}

func NewAuthHandler(auth *service.AuthService, tokens *service.TokenService) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens}
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	if strings.TrimSpace(payload.Username) == "" || payload.Password == "" {
		writeError(w, apierror.New("MISSING_CREDENTIALS", "Username and password are required", "", http.StatusBadRequest))
		return
	}

	user, err := h.auth.Authenticate(r.Context(), payload.Username, payload.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			slog.Debug("token login rejected", "username", payload.Username, "reason", err)
		}
		writeError(w, err)
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, pair)
}

// Refresh handles POST /api/v1/auth/refresh. Only refresh tokens are
// accepted; an access token presented here is a distinct failure, and the
// user must still exist for a new pair to be minted.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, apierror.New("MISSING_REFRESH_TOKEN", "Refresh token is required", "", http.StatusBadRequest))
		return
	}

	claims, err := h.tokens.Verify(payload.RefreshToken)
	if err != nil {
		writeError(w, apierror.New("INVALID_REFRESH_TOKEN", "Invalid or expired refresh token", "", http.StatusUnauthorized))
		return
	}

	if claims.Type != model.TokenTypeRefresh {
		writeError(w, apierror.New("INVALID_TOKEN_TYPE", "Invalid token type. Refresh token required.", "", http.StatusUnauthorized))
		return
	}

	user, err := h.auth.FindByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			writeError(w, apierror.New("USER_NOT_FOUND", "User no longer exists", "", http.StatusUnauthorized))
			return
		}
		writeError(w, err)
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, pair)
}

// Me handles GET /api/v1/auth/me behind the JWT guard chain.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apierror.New("AUTHENTICATION_REQUIRED", "Authentication required", "", http.StatusUnauthorized))
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"user": user.Public()})
}
