package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MemoryBroker is the in-process fallback. Same delivery contract as the
// Redis broker: at most once, drop on slow consumers, nothing durable.
type MemoryBroker struct {
	log *zap.Logger

	mu      sync.RWMutex
	subs    map[uuid.UUID]map[*memorySubscription]struct{}
	changes []Change
}

func NewMemoryBroker(log *zap.Logger) *MemoryBroker {
	return &MemoryBroker{
		log:  log,
		subs: make(map[uuid.UUID]map[*memorySubscription]struct{}),
	}
}

func (b *MemoryBroker) Publish(_ context.Context, event Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs[event.RecipientID] {
		select {
		case sub.events <- event:
		default:
			b.log.Warn("subscriber buffer full, dropping notification",
				zap.String("recipient_id", event.RecipientID.String()))
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, recipientID uuid.UUID) (Subscription, error) {
	sub := &memorySubscription{
		broker:      b,
		recipientID: recipientID,
		events:      make(chan Event, subscriberBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[recipientID] == nil {
		b.subs[recipientID] = make(map[*memorySubscription]struct{})
	}
	b.subs[recipientID][sub] = struct{}{}
	return sub, nil
}

func (b *MemoryBroker) AppendChange(_ context.Context, change Change) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.changes = append(b.changes, change)
	return nil
}

// Changes returns a copy of the accumulated change log.
func (b *MemoryBroker) Changes() []Change {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Change, len(b.changes))
	copy(out, b.changes)
	return out
}

// HasSubscriber reports whether a live subscription exists for the
// recipient. Lets tests wait until a relay has attached before publishing.
func (b *MemoryBroker) HasSubscriber(recipientID uuid.UUID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[recipientID]) > 0
}

func (b *MemoryBroker) remove(sub *memorySubscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	set := b.subs[sub.recipientID]
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sub.recipientID)
	}
	close(sub.events)
}

type memorySubscription struct {
	broker      *MemoryBroker
	recipientID uuid.UUID
	events      chan Event
	closeOnce   sync.Once
}

func (s *memorySubscription) Events() <-chan Event { return s.events }

func (s *memorySubscription) Close() error {
	s.closeOnce.Do(func() { s.broker.remove(s) })
	return nil
}
