package middleware

import (
	"net/http"
	"strings"

	"user-service/internal/model"
)

type tokenVerifier interface {
	Verify(tokenString string) (*model.AuthClaims, error)
}

// JWTMiddleware resolves Bearer access tokens to principals. Authenticate
// is deliberately soft: every failure mode falls through to an anonymous
// request, and RequireJWT is the hard gate that rejects.
type JWTMiddleware struct {
	verifier tokenVerifier
	users    userFinder
}

func NewJWTMiddleware(verifier tokenVerifier, users userFinder) *JWTMiddleware {
	return &JWTMiddleware{verifier: verifier, users: users}
}

// Authenticate attaches a principal when the Authorization header carries
// a valid access token for a user that still exists. Missing header,
// malformed scheme, bad signature, expired token, wrong token type, or a
// deleted user all continue without a principal.
func (m *JWTMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil || claims.Type != model.TokenTypeAccess {
			next.ServeHTTP(w, r)
			return
		}

		user, err := m.users.FindByID(r.Context(), claims.UserID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
	})
}

// RequireJWT halts with a structured 401 when no principal was attached
// upstream.
func RequireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = jsonEncode(w, model.APIResponse{
				Success: false,
				Error: &model.APIError{
					Code:    "AUTHENTICATION_REQUIRED",
					Message: "Valid JWT token required. Please provide a valid token in the Authorization header.",
				},
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
