package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"user-service/internal/model"
)

// MemoryUserRepository is an in-memory credential store used by tests and
// local development. It mirrors the Postgres repository's behavior,
// including the uniqueness guarantee on username.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[string]model.User
	byName map[string]string // username -> id
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   map[string]model.User{},
		byName: map[string]string{},
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[u.Username]; exists {
		return model.ErrUserAlreadyExists
	}

	r.byID[u.ID] = u
	r.byName[u.Username] = u.ID
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, exists := r.byID[id]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byName[strings.TrimSpace(username)]
	if !exists {
		return model.User{}, model.ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) List(_ context.Context) ([]model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.byID))
	for _, u := range r.byID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, exists := r.byID[id]
	if !exists {
		return model.ErrUserNotFound
	}
	delete(r.byID, id)
	delete(r.byName, u.Username)
	return nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}
