package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/spot-reservation/internal/model"
	"github.com/iliyamo/spot-reservation/internal/repository"
)

// userRepositoryInMemory indexes users by id and by lower-cased email.
type userRepositoryInMemory struct {
	mu      sync.RWMutex
	byID    map[uint64]model.User
	byEmail map[string]uint64
	nextID  uint64
}

// NewUserRepository returns an in-memory user store.
func NewUserRepository() repository.UserStore {
	return &userRepositoryInMemory{
		byID:    make(map[uint64]model.User),
		byEmail: make(map[string]uint64),
	}
}

func (r *userRepositoryInMemory) Create(_ context.Context, u *model.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[u.Email]; exists {
		return repository.ErrEmailExists
	}
	r.nextID++
	u.ID = r.nextID
	r.byID[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *userRepositoryInMemory) GetByEmail(_ context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *userRepositoryInMemory) GetByID(_ context.Context, id uint64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

var _ repository.UserStore = (*userRepositoryInMemory)(nil)
