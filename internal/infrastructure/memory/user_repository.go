package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/entity"
	"github.com/oksasatya/go-ddd-catalog-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepository)(nil)

// UserRepository keeps users in maps guarded by a single lock, so the
// uniqueness check and the insert are one atomic step.
type UserRepository struct {
	lock       sync.RWMutex
	byID       map[string]*entity.User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:       make(map[string]*entity.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *UserRepository) Insert(_ context.Context, u *entity.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.byUsername[u.Username]; ok {
		return repository.ErrDuplicateKey
	}
	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrDuplicateKey
	}

	u.ID = uuid.NewString()
	u.CreatedAt = time.Now().UTC()
	stored := *u
	r.byID[u.ID] = &stored
	r.byUsername[u.Username] = u.ID
	r.byEmail[u.Email] = u.ID
	return nil
}

// Count is used by tests to assert that failed signups persisted nothing.
func (r *UserRepository) Count() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.byID)
}
