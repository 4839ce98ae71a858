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
)

// WebHandler is the cookie-authenticated session surface. Failures
// degrade to redirects with flashed user-facing text; the generic
// "incorrect username or password" wording is deliberate so the surface
// never confirms whether a username exists.
type WebHandler struct {
	auth     *service.AuthService
	sessions *middleware.SessionManager
}

func NewWebHandler(auth *service.AuthService, sessions *middleware.SessionManager) *WebHandler {
	return &WebHandler{auth: auth, sessions: sessions}
}

// Welcome handles GET /.
func (h *WebHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{
		"service": ServiceName,
		"links":   []string{"/signup", "/login", "/dashboard"},
	})
}

// SignupPage handles GET /signup: flashed validation errors from a prior
// attempt plus the callbackUrl to echo into the form.
func (h *WebHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "signup")
}

// LoginPage handles GET /login.
func (h *WebHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, "login")
}

func (h *WebHandler) renderForm(w http.ResponseWriter, r *http.Request, page string) {
	messages := h.sessions.ConsumeFlashes(r.Context())
	writeSuccess(w, http.StatusOK, map[string]any{
		"page":        page,
		"messages":    messages,
		"callbackUrl": r.URL.Query().Get("callbackUrl"),
	})
}

// Signup handles POST /signup form submissions.
func (h *WebHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "/signup", "Invalid form submission")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	callback := r.PostFormValue("callbackUrl")

	if problems := service.ValidateSignup(strings.TrimSpace(username), password); len(problems) > 0 {
		h.flashAndRedirect(w, r, "/signup", problems...)
		return
	}

	user, err := h.auth.Register(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			h.flashAndRedirect(w, r, "/signup", "Username already exists. Please choose a different username.")
			return
		}
		slog.Error("signup failed", "error", err)
		h.flashAndRedirect(w, r, "/signup", "An error occurred during signup. Please try again.")
		return
	}

	// The user row exists even if session establishment fails here; the
	// client is told to retry via a fresh login rather than rolling the
	// account back.
	if err := h.sessions.Login(r.Context(), w, user); err != nil {
		slog.Error("post-signup session establishment failed", "error", err, "user_id", user.ID)
		http.Error(w, "signup succeeded but login failed; please log in", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, safeRedirectTarget(callback, "/dashboard"), http.StatusFound)
}

// Login handles POST /login form submissions. Unknown username and wrong
// password produce identical responses; the distinction survives only in
// the debug log.
func (h *WebHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.flashAndRedirect(w, r, "/login", "Invalid form submission")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	callback := r.PostFormValue("callbackUrl")

	if username == "" || password == "" {
		var problems []string
		if username == "" {
			problems = append(problems, "Username is required")
		}
		if password == "" {
			problems = append(problems, "Password is required")
		}
		h.flashAndRedirect(w, r, "/login", problems...)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			slog.Debug("login rejected", "username", username, "reason", err)
			h.flashAndRedirect(w, r, "/login", "Incorrect username or password.")
			return
		}
		slog.Error("login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	// Login persists the session before returning, so the redirect below
	// cannot outrun the store write.
	if err := h.sessions.Login(r.Context(), w, user); err != nil {
		slog.Error("session establishment failed", "error", err, "user_id", user.ID)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, safeRedirectTarget(callback, "/dashboard"), http.StatusFound)
}

// Logout handles POST /logout.
func (h *WebHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		slog.Error("logout failed", "error", err)
		http.Error(w, "An error occurred while logging out", http.StatusInternalServerError)
		return
	}

	callback := r.PostFormValue("callbackUrl")
	http.Redirect(w, r, safeRedirectTarget(callback, "/"), http.StatusFound)
}

// Dashboard handles GET /dashboard behind EnsureAuthenticated.
func (h *WebHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	current, _ := middleware.PrincipalFromContext(r.Context())

	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	public := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	writeSuccess(w, http.StatusOK, map[string]any{
		"users":       public,
		"currentUser": current.Public(),
	})
}

// SessionInfo handles GET /api/v1/session, the endpoint peer services
// poll to validate a forwarded session cookie. Response shape is fixed by
// those consumers.
func (h *WebHandler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Not authenticated"})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]model.PublicUser{"user": user.Public()})
}

func (h *WebHandler) flashAndRedirect(w http.ResponseWriter, r *http.Request, target string, messages ...string) {
	if err := h.sessions.Flash(r.Context(), w, messages...); err != nil {
		slog.Error("failed to flash messages", "error", err)
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// safeRedirectTarget honors only same-origin relative paths, closing the
// open redirect the callbackUrl parameter would otherwise be. Anything
// scheme-qualified, protocol-relative, or backslash-weird falls back.
func safeRedirectTarget(raw string, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	if !strings.HasPrefix(raw, "/") {
		return fallback
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return fallback
	}
	if strings.ContainsAny(raw, "\\\r\n") {
		return fallback
	}
	return raw
}
