package auth

import (
	"context"
	"sync"

	"truefund.org/internal/fund"
)

// MemoryStore keeps users in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

var _ UserStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

func (s *MemoryStore) EnsureUser(ctx context.Context, u User) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.users[u.ID]; ok {
		return cur, nil
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryStore) FindUser(ctx context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, fund.ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) UpdateUserFlags(ctx context.Context, id string, f FlagUpdate) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, fund.ErrNotFound
	}
	f.apply(&u)
	s.users[id] = u
	return u, nil
}
