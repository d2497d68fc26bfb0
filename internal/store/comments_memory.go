package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCommentStore is a development-only in-memory implementation.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	nextID   int64
	comments map[int64]Comment
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{comments: make(map[int64]Comment)}
}

func (s *InMemoryCommentStore) Create(_ context.Context, c Comment) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	c.ID = s.nextID
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.IsDeleted = false
	c.DeletedBy = nil
	c.DeletedAt = nil
	s.comments[c.ID] = c
	return c, nil
}

func (s *InMemoryCommentStore) GetByID(_ context.Context, id int64) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrCommentNotFound
	}
	return c, nil
}

func (s *InMemoryCommentStore) RootsByPost(_ context.Context, postID int64, limit, offset int) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roots []Comment
	for _, c := range s.comments {
		if c.PostID == postID && c.ParentCommentID == nil && !c.IsDeleted {
			roots = append(roots, c)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		if !roots[i].CreatedAt.Equal(roots[j].CreatedAt) {
			return roots[i].CreatedAt.After(roots[j].CreatedAt)
		}
		return roots[i].ID > roots[j].ID
	})

	if offset >= len(roots) {
		return nil, nil
	}
	roots = roots[offset:]
	if limit > 0 && len(roots) > limit {
		roots = roots[:limit]
	}
	return roots, nil
}

func (s *InMemoryCommentStore) RepliesByParents(_ context.Context, parentIDs []int64) ([]Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	parents := make(map[int64]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		parents[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var replies []Comment
	for _, c := range s.comments {
		if c.ParentCommentID == nil || c.IsDeleted {
			continue
		}
		if _, ok := parents[*c.ParentCommentID]; ok {
			replies = append(replies, c)
		}
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	return replies, nil
}

func (s *InMemoryCommentStore) CountByPost(_ context.Context, postID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, c := range s.comments {
		if c.PostID == postID && !c.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryCommentStore) SoftDelete(_ context.Context, id int64, deletedBy uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[id]
	if !ok || c.IsDeleted {
		return ErrCommentNotFound
	}
	now := time.Now().UTC()
	c.IsDeleted = true
	c.Content = SoftDeleteMark
	c.ContentHTML = SoftDeleteMarkHTML
	c.DeletedBy = &deletedBy
	c.DeletedAt = &now
	c.UpdatedAt = now
	s.comments[id] = c
	return nil
}
