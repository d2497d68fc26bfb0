package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryUserStore is a development-only author directory.
type InMemoryUserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]Author
}

func NewInMemoryUserStore() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[uuid.UUID]Author)}
}

// AddUser registers an author for lookup.
func (s *InMemoryUserStore) AddUser(a Author) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[a.ID] = a
}

func (s *InMemoryUserStore) GetAuthor(_ context.Context, id uuid.UUID) (Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.users[id]
	if !ok {
		return Author{}, ErrUserNotFound
	}
	return a, nil
}

func (s *InMemoryUserStore) GetAuthors(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]Author, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]Author, len(ids))
	for _, id := range ids {
		if a, ok := s.users[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}
