package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/model"
	"user-service/internal/repository"
)

func newTestAuthService() *AuthService {
	return NewAuthService(repository.NewMemoryUserRepository(), 4)
}

func TestRegister_Success(t *testing.T) {
	svc := newTestAuthService()

	user, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "Passw0rd!", user.PasswordHash)
}

func TestRegister_DuplicateUsernameIsConflict(t *testing.T) {
	svc := newTestAuthService()

	_, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alice", "Different1")
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUserAlreadyExists)
	assert.NotErrorIs(t, err, model.ErrInvalidInput)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuthService()

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "Passw0rd!"},
		{"long username", "a_very_long_username_over_thirty_chars", "Passw0rd!"},
		{"bad characters", "al ice!", "Passw0rd!"},
		{"short password", "alice", "Pw1"},
		{"no uppercase", "alice", "passw0rd!"},
		{"no digit", "alice", "Password!"},
		{"empty username", "", "Passw0rd!"},
		{"empty password", "alice", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.username, tc.password)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}
}

func TestAuthenticate_Success(t *testing.T) {
	svc := newTestAuthService()
	created, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
}

func TestAuthenticate_FailuresAreUniform(t *testing.T) {
	svc := newTestAuthService()
	_, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate(context.Background(), "alice", "WrongPass1")
	_, unknownUser := svc.Authenticate(context.Background(), "mallory", "Passw0rd!")

	// Both failures must match the same sentinel from the caller's point
	// of view; the internal distinction exists only for logging.
	assert.ErrorIs(t, wrongPassword, model.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, model.ErrInvalidCredentials)
	assert.ErrorIs(t, wrongPassword, model.ErrIncorrectPassword)
	assert.ErrorIs(t, unknownUser, model.ErrIncorrectUsername)
}

func TestAuthenticate_IsReadOnly(t *testing.T) {
	repo := repository.NewMemoryUserRepository()
	svc := NewAuthService(repo, 4)
	_, err := svc.Register(context.Background(), "alice", "Passw0rd!")
	require.NoError(t, err)

	before, err := repo.Count(context.Background())
	require.NoError(t, err)

	_, _ = svc.Authenticate(context.Background(), "alice", "Passw0rd!")
	_, _ = svc.Authenticate(context.Background(), "mallory", "nope")

	after, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestValidateSignup_Messages(t *testing.T) {
	problems := ValidateSignup("", "")
	assert.Equal(t, []string{"Username is required", "Password is required"}, problems)

	assert.Empty(t, ValidateSignup("alice_01", "Passw0rd!"))
}
