package cache

import (
	"fmt"
	"time"
)

// TTL policy for the entries this core maintains.
const (
	PostCommentsTTL = time.Hour
	CommentCountTTL = time.Hour
)

// PostCommentsKey is the cache entry holding the serialized first page of a
// post's comment forest.
func PostCommentsKey(postID int64) string {
	return fmt.Sprintf("comments:post:%d", postID)
}

// PostCommentCountKey holds the cached non-deleted comment count as an
// integer string.
func PostCommentCountKey(postID int64) string {
	return fmt.Sprintf("post:comment_count:%d", postID)
}
