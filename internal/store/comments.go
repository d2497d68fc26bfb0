package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Comment represents a single comment row. Soft-deleted rows stay in place
// so replies keep a parent to hang from; IsDeleted excludes them from trees
// and counts.
type Comment struct {
	ID              int64      `json:"id"`
	PostID          int64      `json:"post_id"`
	UserID          uuid.UUID  `json:"user_id"`
	ParentCommentID *int64     `json:"parent_comment_id,omitempty"`
	Content         string     `json:"content"`
	ContentHTML     string     `json:"content_html"`
	IsDeleted       bool       `json:"is_deleted"`
	DeletedBy       *uuid.UUID `json:"deleted_by,omitempty"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	MarkdownEnabled bool       `json:"markdown_enabled"`
	NestingLevel    int32      `json:"nesting_level"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SoftDeleteMark is what replaces a deleted comment's content.
const (
	SoftDeleteMark     = "[deleted]"
	SoftDeleteMarkHTML = "<p>[deleted]</p>"
)

// CommentStore defines the contract for comment persistence.
type CommentStore interface {
	// Create inserts the comment and returns it with id and timestamps
	// assigned.
	Create(ctx context.Context, c Comment) (Comment, error)

	// GetByID returns the row regardless of its deleted flag; callers
	// decide whether a deleted row is usable.
	GetByID(ctx context.Context, id int64) (Comment, error)

	// RootsByPost returns non-deleted root comments for a post, newest
	// first.
	RootsByPost(ctx context.Context, postID int64, limit, offset int) ([]Comment, error)

	// RepliesByParents returns non-deleted direct replies to any of the
	// given parents, oldest first.
	RepliesByParents(ctx context.Context, parentIDs []int64) ([]Comment, error)

	// CountByPost counts non-deleted comments on a post.
	CountByPost(ctx context.Context, postID int64) (int64, error)

	// SoftDelete marks the row deleted and replaces its content with the
	// deletion mark. Returns ErrCommentNotFound when the row is absent or
	// already deleted.
	SoftDelete(ctx context.Context, id int64, deletedBy uuid.UUID) error
}

// Sentinel errors
var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")
)
