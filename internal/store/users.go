package store

import (
	"context"

	"github.com/google/uuid"
)

// Author is the brief shown on every comment node.
type Author struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// UserStore is the author-lookup collaborator.
type UserStore interface {
	// GetAuthor resolves one user; ErrUserNotFound when absent.
	GetAuthor(ctx context.Context, id uuid.UUID) (Author, error)

	// GetAuthors resolves a batch; absent ids are simply missing from the
	// result map.
	GetAuthors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Author, error)
}
