package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"user-service/internal/model"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,30}$`)

// UserStore is the slice of the credential store the auth service needs.
// The Postgres and in-memory repositories both satisfy it.
type UserStore interface {
	Create(ctx context.Context, u model.User) error
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type AuthService struct {
	users      UserStore
	bcryptCost int
}

func NewAuthService(users UserStore, bcryptCost int) *AuthService {
	return &AuthService{users: users, bcryptCost: bcryptCost}
}

// Authenticate resolves a username/password pair to a user. Read-only: it
// does not create a session or tokens. The returned error distinguishes
// unknown username from password mismatch for logging, but both unwrap to
// model.ErrInvalidCredentials so callers present a single generic failure.
func (s *AuthService) Authenticate(ctx context.Context, username string, password string) (model.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.User{}, model.ErrIncorrectUsername
	}
	if err != nil {
		return model.User{}, fmt.Errorf("authenticate: %w", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return model.User{}, model.ErrIncorrectPassword
	}

	return user, nil
}

// Register validates, hashes, and stores a new user. A duplicate username
// surfaces as model.ErrUserAlreadyExists, distinct from any other failure.
func (s *AuthService) Register(ctx context.Context, username string, password string) (model.User, error) {
	username = strings.TrimSpace(username)

	if problems := ValidateSignup(username, password); len(problems) > 0 {
		return model.User{}, fmt.Errorf("%w: %s", model.ErrInvalidInput, strings.Join(problems, "; "))
	}

	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return model.User{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *AuthService) FindByID(ctx context.Context, id string) (model.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// ValidateSignup returns one user-facing message per violated rule, in a
// stable order. An empty slice means the input is acceptable.
func ValidateSignup(username string, password string) []string {
	var problems []string

	switch {
	case username == "":
		problems = append(problems, "Username is required")
	case len(username) < 3 || len(username) > 30:
		problems = append(problems, "Username must be between 3 and 30 characters")
	case !usernamePattern.MatchString(username):
		problems = append(problems, "Username can only contain letters, numbers, and underscores")
	}

	switch {
	case password == "":
		problems = append(problems, "Password is required")
	case len(password) < 8:
		problems = append(problems, "Password must be at least 8 characters long")
	case !hasUpperLowerDigit(password):
		problems = append(problems, "Password must contain at least one lowercase letter, one uppercase letter, and one number")
	}

	return problems
}

func hasUpperLowerDigit(password string) bool {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}
