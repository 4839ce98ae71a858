package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"user-service/internal/model"
	"user-service/internal/session"
)

type userFinder interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

// SessionManager runs the cookie-to-principal pipeline on every request
// and exposes the login/logout mutators handlers call. It never rejects a
// request itself; an unresolvable cookie just leaves the request
// anonymous.
type SessionManager struct {
	store  session.Store
	users  userFinder
	secret string
	cookie session.CookieOptions
	ttl    time.Duration
}

func NewSessionManager(store session.Store, users userFinder, secret string, cookie session.CookieOptions, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionManager{store: store, users: users, secret: secret, cookie: cookie, ttl: ttl}
}

// Handler resolves the session cookie to a session record and, when the
// record carries a principal id that still resolves in the credential
// store, attaches the principal to the request context.
func (m *SessionManager) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := session.ReadCookie(r, m.secret)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := m.store.Get(r.Context(), id)
		if err != nil {
			slog.Error("session lookup failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := withSession(r.Context(), sess)

		if sess.Authenticated() {
			user, err := m.users.FindByID(ctx, sess.UserID)
			switch {
			case err == nil:
				ctx = WithPrincipal(ctx, user)
			case errors.Is(err, model.ErrUserNotFound):
				// Principal was deleted out from under the session.
			default:
				slog.Error("session principal lookup failed", "error", err, "user_id", sess.UserID)
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Login binds the user to a fresh session and persists it before
// returning. Callers must not write the response that depends on the
// session (the post-login redirect) until Login has returned; a dependent
// request issued right after the redirect would otherwise race an
// uncommitted write. The session id is rotated on every login.
func (m *SessionManager) Login(ctx context.Context, w http.ResponseWriter, user model.User) error {
	id, err := session.NewID()
	if err != nil {
		return err
	}

	sess := &session.Session{
		ID:        id,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if old := SessionFromContext(ctx); old != nil {
		sess.Flashes = old.Flashes
		if err := m.store.Delete(ctx, old.ID); err != nil {
			slog.Warn("failed to drop pre-login session", "error", err)
		}
	}

	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}

	session.SetCookie(w, sess.ID, m.secret, m.cookie)
	return nil
}

// Logout clears the principal from the current session. The record itself
// survives (flash messages outlive logout); subsequent requests with the
// same cookie resolve to anonymous.
func (m *SessionManager) Logout(ctx context.Context) error {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return nil
	}

	sess.UserID = ""
	return m.store.Save(ctx, sess)
}

// Flash queues a one-shot message on the session, creating and persisting
// a session on demand for anonymous requests.
func (m *SessionManager) Flash(ctx context.Context, w http.ResponseWriter, messages ...string) error {
	sess := SessionFromContext(ctx)
	if sess == nil {
		id, err := session.NewID()
		if err != nil {
			return err
		}
		sess = &session.Session{ID: id, ExpiresAt: time.Now().Add(m.ttl)}
		session.SetCookie(w, sess.ID, m.secret, m.cookie)
	}

	for _, msg := range messages {
		sess.AddFlash(msg)
	}
	return m.store.Save(ctx, sess)
}

// ConsumeFlashes drains queued flash messages and persists the drained
// session.
func (m *SessionManager) ConsumeFlashes(ctx context.Context) []string {
	sess := SessionFromContext(ctx)
	if sess == nil {
		return nil
	}

	flashes := sess.ConsumeFlashes()
	if len(flashes) > 0 {
		if err := m.store.Save(ctx, sess); err != nil {
			slog.Error("failed to persist drained flashes", "error", err)
		}
	}
	return flashes
}

// EnsureAuthenticated gates session-surface routes: pass through when a
// principal is present, otherwise redirect to the login page carrying the
// original path as callbackUrl.
func (m *SessionManager) EnsureAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		target := "/login"
		if r.URL.Path != "" && r.URL.Path != "/login" {
			target += "?callbackUrl=" + url.QueryEscape(r.URL.Path)
		}
		http.Redirect(w, r, target, http.StatusFound)
	})
}
