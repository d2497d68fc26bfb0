package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// EventSink is what the write path hands events to. It must never block.
type EventSink interface {
	Dispatch(event Event)
}

// dispatchTimeout bounds a single broker publish.
const dispatchTimeout = 5 * time.Second

// Dispatcher decouples the request path from notification delivery: a
// bounded queue drained by one worker. Enqueueing never blocks; a full
// queue or a failed publish drops the event with a warning. The triggering
// request has already succeeded by the time anything lands here.
type Dispatcher struct {
	log    *zap.Logger
	broker Broker
	queue  chan Event
}

func NewDispatcher(log *zap.Logger, broker Broker, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		log:    log,
		broker: broker,
		queue:  make(chan Event, buffer),
	}
}

// Dispatch enqueues the event for background delivery and returns
// immediately.
func (d *Dispatcher) Dispatch(event Event) {
	select {
	case d.queue <- event:
	default:
		d.log.Warn("notification queue full, dropping event",
			zap.String("recipient_id", event.RecipientID.String()),
			zap.String("type", string(event.Type)))
	}
}

// Run drains the queue until ctx is cancelled. Events still queued at
// shutdown are dropped; delivery is at most once by contract.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.deliver(event)
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	if err := d.broker.Publish(ctx, event); err != nil {
		d.log.Warn("notification publish failed",
			zap.String("recipient_id", event.RecipientID.String()),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
