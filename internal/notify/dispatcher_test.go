package notify

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDispatcherDeliversInBackground(t *testing.T) {
	t.Parallel()
	b := NewMemoryBroker(zap.NewNop())
	d := NewDispatcher(zap.NewNop(), b, 16)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	recipient := uuid.New()
	sub, err := b.Subscribe(ctx, recipient)
	require.NoError(t, err)
	defer sub.Close()

	d.Dispatch(Event{RecipientID: recipient, Type: TypeCommentReply, ObjectID: 5, ActorID: uuid.New()})

	got := recvEvent(t, sub)
	assert.Equal(t, int64(5), got.ObjectID)
}

func TestDispatcherNeverBlocksOnFullQueue(t *testing.T) {
	t.Parallel()
	b := NewMemoryBroker(zap.NewNop())
	// Worker not running: the queue fills and stays full.
	d := NewDispatcher(zap.NewNop(), b, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			d.Dispatch(Event{RecipientID: uuid.New(), Type: TypeNewComment, ObjectID: int64(i), ActorID: uuid.New()})
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a full queue")
	}
}

func TestDispatcherStopsOnCancel(t *testing.T) {
	t.Parallel()
	b := NewMemoryBroker(zap.NewNop())
	d := NewDispatcher(zap.NewNop(), b, 16)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
