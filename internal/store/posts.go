package store

import "context"

// PostStore is the post-existence collaborator: the comment service only
// needs to know whether a live (non-deleted) post is there to attach to.
type PostStore interface {
	Exists(ctx context.Context, postID int64) (bool, error)
}
