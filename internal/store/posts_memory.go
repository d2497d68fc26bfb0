package store

import (
	"context"
	"sync"
)

// InMemoryPostStore is a development-only post directory.
type InMemoryPostStore struct {
	mu    sync.RWMutex
	posts map[int64]bool // id -> live (false = soft-deleted)
}

func NewInMemoryPostStore() *InMemoryPostStore {
	return &InMemoryPostStore{posts: make(map[int64]bool)}
}

// AddPost registers a live post.
func (s *InMemoryPostStore) AddPost(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[id] = true
}

// RemovePost marks a post soft-deleted; existence checks then fail for it.
func (s *InMemoryPostStore) RemovePost(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[id] = false
}

func (s *InMemoryPostStore) Exists(_ context.Context, postID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts[postID], nil
}
