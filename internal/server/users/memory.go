package users

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gochat/internal/common"
	"github.com/google/uuid"
)

// MemoryRepository is a mutex-guarded in-memory password store. It backs
// the server when no database DSN is configured, and the unit tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]*User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserName]; ok {
		return nil, common.ErrUsernameTaken
	}

	stored := &User{
		ID:        uuid.NewString(),
		UserName:  user.UserName,
		Salt:      append([]byte(nil), user.Salt...),
		Digest:    append([]byte(nil), user.Digest...),
		CreatedAt: time.Now(),
	}
	r.users[user.UserName] = stored

	return copyUser(stored), nil
}

func (r *MemoryRepository) GetByUserName(ctx context.Context, userName string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.users[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}

	return copyUser(stored), nil
}

func (r *MemoryRepository) Exists(ctx context.Context, userName string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.users[userName]
	return ok, nil
}

// copyUser returns a defensive copy so callers cannot mutate stored entries.
func copyUser(u *User) *User {
	return &User{
		ID:        u.ID,
		UserName:  u.UserName,
		Salt:      append([]byte(nil), u.Salt...),
		Digest:    append([]byte(nil), u.Digest...),
		CreatedAt: u.CreatedAt,
	}
}
