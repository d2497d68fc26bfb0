// Package notify carries comment events to their recipients.
//
// Two paths leave the write path through here: per-recipient realtime
// notifications (Redis pub/sub channel notifications:user:{id}, delivered
// at most once to live subscribers, never stored) and the append-only
// structural change log (Redis stream stream:comments) for any interested
// consumer.
//
// Primary backend: Redis. Fallback: an in-process broker (development and
// tests only).
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Type enumerates the notification kinds. Values are part of the wire
// format consumed by existing clients; do not rename.
type Type string

const (
	TypeCommentReply   Type = "CommentReply"
	TypeNewComment     Type = "NewComment"
	TypePostLike       Type = "PostLike"
	TypeFollowerUpdate Type = "FollowerUpdate"
	TypeSystemMessage  Type = "SystemMessage"
)

// Event is one notification addressed to one recipient. Ephemeral: a
// recipient without a live subscription at publish time never sees it.
type Event struct {
	RecipientID     uuid.UUID `json:"recipient_id"`
	Type            Type      `json:"notification_type"`
	ObjectID        int64     `json:"object_id"`
	RelatedObjectID *int64    `json:"related_object_id,omitempty"`
	ActorID         uuid.UUID `json:"actor_id"`
	Content         string    `json:"content"`
}

// Change log event names.
const (
	ChangeCreated = "comment_created"
	ChangeDeleted = "comment_deleted"
)

// Change is one structural mutation of a comment tree, appended to the
// change stream. ParentID is recorded for created comments only; a nil
// ParentID on a created comment marks a root.
type Change struct {
	Event     string
	PostID    int64
	CommentID int64
	ParentID  *int64
}

// Subscription is one recipient's live event feed. Events() closes after
// Close; a slow consumer loses events rather than blocking the broker.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Broker fans events out to per-recipient subscriptions and appends
// structural changes to the shared log.
type Broker interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, recipientID uuid.UUID) (Subscription, error)
	AppendChange(ctx context.Context, change Change) error
}

// ChannelFor names the pub/sub channel carrying one recipient's events.
func ChannelFor(recipientID uuid.UUID) string {
	return fmt.Sprintf("notifications:user:%s", recipientID)
}

// StreamComments is the append-only structural change log.
const StreamComments = "stream:comments"

// subscriberBuffer bounds each subscription's in-flight events.
const subscriberBuffer = 100

// NewBroker selects the broker backend: Redis when a client is provided,
// otherwise the in-process broker. When isProd is true the in-process
// fallback is not allowed.
func NewBroker(client *redis.Client, log *zap.Logger, isProd bool) (Broker, error) {
	if client != nil {
		return NewRedisBroker(client, log), nil
	}
	if isProd {
		return nil, errors.New("production requires Redis for notification fan-out")
	}
	return NewMemoryBroker(log), nil
}
