package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"user-service/internal/model"
)

// TokenConfig is the explicit configuration the token service is
// constructed with. There is no package-level secret.
type TokenConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenService issues and verifies self-contained HS256 token pairs.
// Tokens carry no server-side state; validity is signature + expiry plus
// the caller's own type and user-resolution checks.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	return &TokenService{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

// IssuePair signs a fresh access/refresh token pair for the user. Claims
// are identical in shape; only the type discriminator and expiry differ.
func (s *TokenService) IssuePair(user model.User) (model.TokenPair, error) {
	now := time.Now().UTC()

	accessToken, err := s.sign(user, model.TokenTypeAccess, now, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.sign(user, model.TokenTypeRefresh, now, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return model.TokenPair{
		User:         user.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    FormatTTL(s.accessTTL),
	}, nil
}

// Verify checks signature, structure, and expiry. Every failure collapses
// to model.ErrInvalidToken so callers cannot tell which check tripped.
// Checking that Claims.Type matches the endpoint's expectation is the
// caller's responsibility.
func (s *TokenService) Verify(tokenString string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, model.ErrInvalidToken
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrInvalidToken
	}

	claims := &model.AuthClaims{}
	claims.UserID, _ = claimsMap["userId"].(string)
	claims.Username, _ = claimsMap["username"].(string)
	claims.Type, _ = claimsMap["type"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.UserID == "" || claims.Type == "" {
		return nil, model.ErrInvalidToken
	}

	return claims, nil
}

func (s *TokenService) sign(user model.User, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":   user.ID,
		"username": user.Username,
		"type":     tokenType,
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

// FormatTTL renders a duration the way clients expect expiresIn: "24h"
// rather than Go's "24h0m0s".
func FormatTTL(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int64(d/time.Hour))
	}
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%dm", int64(d/time.Minute))
	}
	return d.String()
}
