package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
)

// MemoryRepository keeps users in process memory. Uniqueness of email is
// enforced under the write lock, so it behaves like the unique index of
// the Postgres schema. Used by tests and by the server's -memory mode.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[int64]*models.User
	byEmail map[string]int64
	lastID  int64
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[int64]*models.User),
		byEmail: make(map[string]int64),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Insert(_ context.Context, name, email, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[email]; exists {
		return 0, common.ErrorDuplicateKey
	}

	r.lastID++
	r.byID[r.lastID] = &models.User{
		ID:           r.lastID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    r.now().UTC(),
	}
	r.byEmail[email] = r.lastID

	return r.lastID, nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	u := *r.byID[id]
	return &u, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

// Len returns the number of stored users.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
