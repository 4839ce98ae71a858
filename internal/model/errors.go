package model

import (
	"errors"
	"fmt"
)

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials is what callers match on. The two wrapped
	// variants record which half failed for internal logging; the
	// distinction must never reach a client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncorrectUsername  = fmt.Errorf("incorrect username: %w", ErrInvalidCredentials)
	ErrIncorrectPassword  = fmt.Errorf("incorrect password: %w", ErrInvalidCredentials)

	// Token related errors
	ErrInvalidToken = errors.New("invalid token")

	// Generic errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)
