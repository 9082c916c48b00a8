package memory

import (
	"context"
	"sync"

	"userdir/internal/users/models"
	"userdir/internal/users/store"
)

// InMemory serves users from a snapshot handed in by the caller, typically
// decoded from a cookie. Mutations live only as long as the instance; callers
// persist All() themselves if they need the changes to survive.
type InMemory struct {
	mu    sync.RWMutex
	users *models.Snapshot
}

// New builds a store over a copy of users.
func New(users ...models.User) *InMemory {
	return &InMemory{users: models.NewSnapshot(users...)}
}

// FromSnapshot builds a store over a copy of snap.
func FromSnapshot(snap *models.Snapshot) *InMemory {
	if snap == nil {
		return New()
	}
	return &InMemory{users: snap.Clone()}
}

func (s *InMemory) All(_ context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.Clone(), nil
}

func (s *InMemory) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.FindByID(s.users, id)
}

func (s *InMemory) FindByNickname(_ context.Context, nickname string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return store.FindByNickname(s.users, nickname)
}

func (s *InMemory) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users.Put(*user)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users.Delete(id)
	return nil
}
