package notify

import (
	"context"
	"log"
	"sync"
)

const defaultQueueSize = 256

type envelope struct {
	rcpt  Recipient
	event Event
}

// Dispatcher decouples trip-state transitions from notification delivery.
// Events are queued on a buffered channel and drained by a single worker
// goroutine, so no delivery ever runs while the engine holds a trip lock.
// A full queue drops the event with a log line instead of blocking.
type Dispatcher struct {
	notifier Notifier
	queue    chan envelope

	closeOnce sync.Once
	done      chan struct{}
}

// NewDispatcher creates a dispatcher and starts its delivery worker.
func NewDispatcher(notifier Notifier) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		queue:    make(chan envelope, defaultQueueSize),
		done:     make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish queues an event for delivery. It never blocks and never fails:
// dispatch problems are the dispatcher's to log, not the caller's.
func (d *Dispatcher) Publish(rcpt Recipient, event Event) {
	select {
	case d.queue <- envelope{rcpt: rcpt, event: event}:
	default:
		log.Printf("notify: queue full, dropping %s event for trip %s", event.Type, event.TripID)
	}
}

// Close stops the worker after draining queued events.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for env := range d.queue {
		if err := d.notifier.Notify(context.Background(), env.rcpt, env.event); err != nil {
			log.Printf("notify: delivery failed for trip %s (recipient %s %s): %v",
				env.event.TripID, env.rcpt.Audience, env.rcpt.ID, err)
		}
	}
}

// Ensure Dispatcher implements Sink.
var _ Sink = (*Dispatcher)(nil)
