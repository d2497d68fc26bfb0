// Package comments implements the threaded comment core: bounded-depth
// tree retrieval, the rate-limited write path with cache-coherent
// invalidation, and the side effects (notifications, change log) a write
// triggers.
package comments

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxNestingDepth bounds reply chains: a root is level 0 and at most
	// three reply levels are ever materialized beneath it.
	MaxNestingDepth = 3

	// CommentsPerPage is the fixed page size for root comments.
	CommentsPerPage = 20

	// MaxContentLength is the upper bound on comment content, in runes.
	MaxContentLength = 5000
)

// CreateCommentRequest is the caller-supplied part of a new comment.
type CreateCommentRequest struct {
	Content         string `json:"content"`
	ParentCommentID *int64 `json:"parent_comment_id,omitempty"`
	MarkdownEnabled bool   `json:"markdown_enabled"`
}

// CommentAuthor is the brief attached to every comment node.
type CommentAuthor struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CommentResponse is the externally visible comment shape, nested up to
// MaxNestingDepth reply levels. It is what gets cache-serialized; a node
// with no replies omits the field.
type CommentResponse struct {
	ID              int64             `json:"id"`
	ContentHTML     string            `json:"content_html"`
	Author          CommentAuthor     `json:"author"`
	CreatedAt       time.Time         `json:"created_at"`
	ParentCommentID *int64            `json:"parent_comment_id,omitempty"`
	Replies         []CommentResponse `json:"replies,omitempty"`
}

// CommentsListResponse is one page of a post's comment forest plus the
// post's full non-deleted count (which is independent of pagination).
type CommentsListResponse struct {
	Comments   []CommentResponse `json:"comments"`
	TotalCount int64             `json:"total_count"`
}

// Sentinel errors; handlers map these onto stable client-facing codes.
var (
	ErrNotFound       = errors.New("comment not found")
	ErrPostNotFound   = errors.New("post not found")
	ErrParentNotFound = errors.New("parent comment not found")
	ErrUnauthorized   = errors.New("not authorized to perform this action")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrMaxDepth       = errors.New("maximum nesting depth reached")
)

// ValidationError rejects malformed content before the rate limiter or
// the database see the request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Reason
}
