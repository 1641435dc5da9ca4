package notify

import (
	"context"
	"time"

	"viajes/internal/domain"
)

// Audience selects who an event is addressed to.
type Audience string

const (
	AudienceClient     Audience = "CLIENT"
	AudienceDriver     Audience = "DRIVER"
	AudienceAllDrivers Audience = "ALL_DRIVERS"
)

// Severity classifies an event for the recipient's UI.
type Severity string

const (
	SeverityOK   Severity = "OK"
	SeverityInfo Severity = "INFO"
	SeverityWarn Severity = "WARN"
)

// Recipient addresses a single client, a single driver, or the whole
// driver pool (ID empty for broadcasts).
type Recipient struct {
	Audience Audience `json:"audience"`
	ID       string   `json:"id,omitempty"`
}

// Event is a trip-state notification. Delivery is best-effort: a failed
// delivery is logged by the deliverer and never surfaces to the code that
// committed the state transition.
type Event struct {
	TripID    string            `json:"trip_id"`
	Status    domain.TripStatus `json:"status"`
	Type      Severity          `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"created_at"`
}

// Notifier delivers one event to one recipient.
type Notifier interface {
	Notify(ctx context.Context, rcpt Recipient, event Event) error
}

// Sink accepts events for asynchronous delivery. The trip engine publishes
// through a Sink strictly after its state transitions commit.
type Sink interface {
	Publish(rcpt Recipient, event Event)
}

// Multi fans an event out to several notifiers. Each notifier gets the
// event even if an earlier one fails; the first error is returned for
// logging purposes only.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, rcpt Recipient, event Event) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, rcpt, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
