package notify

import (
	"context"
	"log"
)

// LogNotifier writes every event to the process log. It is the default
// deliverer when no push transport is configured, and a useful tee in
// front of real transports.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, rcpt Recipient, event Event) error {
	log.Printf("[NOTIFICATION] Recipient=%s:%s Trip=%s Status=%s Type=%s Title=%q Message=%q",
		rcpt.Audience, rcpt.ID, event.TripID, event.Status, event.Type, event.Title, event.Message)
	return nil
}

// Ensure LogNotifier implements Notifier.
var _ Notifier = (*LogNotifier)(nil)
