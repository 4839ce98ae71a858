// Package session provides the durable server-side session record and the
// stores that hold it. A session is keyed by a high-entropy opaque id held
// client-side in a signed cookie; expiry is enforced by the store's TTL,
// never re-derived from the cookie.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"
)

type Session struct {
	ID        string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	Flashes   []string  `json:"flashes,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Authenticated reports whether a principal is bound to this session.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// AddFlash queues a one-shot message. The caller must Save the session
// for the flash to survive the request.
func (s *Session) AddFlash(message string) {
	s.Flashes = append(s.Flashes, message)
}

// ConsumeFlashes returns queued messages and clears them. The caller must
// Save the session to persist the drained state.
func (s *Session) ConsumeFlashes() []string {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// Store is the durable session mapping. Get returns (nil, nil) for an
// unknown or expired id: absence of a session is not an error.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a cryptographically random session id with 256 bits of
// entropy.
func NewID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
