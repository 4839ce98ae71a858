package middleware

import (
	"context"

	"user-service/internal/model"
	"user-service/internal/session"
)

type principalKeyType struct{}
type sessionKeyType struct{}

var (
	principalKey principalKeyType
	sessionKey   sessionKeyType
)

// WithPrincipal binds the authenticated user to the request context. Both
// the session chain and the JWT guard converge on this one value.
func WithPrincipal(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

// PrincipalFromContext returns the current principal, if any. A missing
// principal means the request is anonymous, not that something failed.
func PrincipalFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(principalKey).(model.User)
	return user, ok
}

func withSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFromContext returns the request's loaded session record, or nil
// when the request carried no resolvable session cookie.
func SessionFromContext(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}
