package notify

import (
	"context"
	"sync"
	"testing"

	"viajes/internal/domain"
)

// countingNotifier records deliveries for assertions.
type countingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *countingNotifier) Notify(_ context.Context, _ Recipient, event Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *countingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func TestDispatcher_DeliversQueuedEvents(t *testing.T) {
	t.Parallel()

	sink := &countingNotifier{}
	d := NewDispatcher(sink)

	for i := 0; i < 10; i++ {
		d.Publish(Recipient{Audience: AudienceClient, ID: "client-1"}, Event{
			TripID: "trip-1",
			Status: domain.TripStatusRequested,
			Type:   SeverityInfo,
		})
	}
	d.Close()

	if got := sink.count(); got != 10 {
		t.Errorf("expected 10 deliveries after drain, got %d", got)
	}
}

func TestDispatcher_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(&countingNotifier{})
	d.Close()
	d.Close()
}

func TestMulti_AllNotifiersSeeTheEvent(t *testing.T) {
	t.Parallel()

	a := &countingNotifier{}
	b := &countingNotifier{}
	m := Multi{a, b}

	if err := m.Notify(context.Background(), Recipient{Audience: AudienceDriver, ID: "d1"}, Event{TripID: "t1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("fan-out incomplete: %d / %d", a.count(), b.count())
	}
}
