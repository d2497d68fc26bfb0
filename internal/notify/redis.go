package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker bridges the write path to Redis pub/sub and the change
// stream. It borrows the shared client; closing it is the caller's job.
type RedisBroker struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisBroker(client *redis.Client, log *zap.Logger) *RedisBroker {
	return &RedisBroker{client: client, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, ChannelFor(event.RecipientID), payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, recipientID uuid.UUID) (Subscription, error) {
	ps := b.client.Subscribe(ctx, ChannelFor(recipientID))
	// Force the SUBSCRIBE round trip so a broken backend fails here, not
	// silently on the first missed event.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan Event, subscriberBuffer),
	}
	go sub.pump(b.log, recipientID)
	return sub, nil
}

func (b *RedisBroker) AppendChange(ctx context.Context, change Change) error {
	values := map[string]any{
		"event":      change.Event,
		"post_id":    strconv.FormatInt(change.PostID, 10),
		"comment_id": strconv.FormatInt(change.CommentID, 10),
	}
	if change.Event == ChangeCreated {
		parent := "null"
		if change.ParentID != nil {
			parent = strconv.FormatInt(*change.ParentID, 10)
		}
		values["parent_id"] = parent
	}
	return b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamComments,
		Values: values,
	}).Err()
}

type redisSubscription struct {
	ps     *redis.PubSub
	events chan Event
}

func (s *redisSubscription) pump(log *zap.Logger, recipientID uuid.UUID) {
	defer close(s.events)
	for msg := range s.ps.Channel() {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Warn("dropping malformed notification",
				zap.String("recipient_id", recipientID.String()),
				zap.Error(err))
			continue
		}
		select {
		case s.events <- ev:
		default:
			log.Warn("subscriber buffer full, dropping notification",
				zap.String("recipient_id", recipientID.String()))
		}
	}
}

func (s *redisSubscription) Events() <-chan Event { return s.events }

func (s *redisSubscription) Close() error { return s.ps.Close() }
