package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPNotifier publishes events to a RabbitMQ topic exchange. Routing keys
// are "client.<id>", "driver.<id>" or "driver.all" so push gateways can
// bind per-party queues or a pool-wide queue.
type AMQPNotifier struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// amqpPayload is the wire body for a published event.
type amqpPayload struct {
	Recipient Recipient `json:"recipient"`
	Event     Event     `json:"event"`
}

// NewAMQPNotifier dials the broker and declares the exchange.
func NewAMQPNotifier(url, exchange string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPNotifier{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// Notify implements Notifier.
func (n *AMQPNotifier) Notify(ctx context.Context, rcpt Recipient, event Event) error {
	body, err := json.Marshal(amqpPayload{Recipient: rcpt, Event: event})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return n.channel.PublishWithContext(ctx,
		n.exchange,
		routingKey(rcpt),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close releases the channel and connection.
func (n *AMQPNotifier) Close() error {
	if err := n.channel.Close(); err != nil {
		n.conn.Close()
		return err
	}
	return n.conn.Close()
}

func routingKey(rcpt Recipient) string {
	switch rcpt.Audience {
	case AudienceClient:
		return "client." + rcpt.ID
	case AudienceDriver:
		return "driver." + rcpt.ID
	default:
		return "driver.all"
	}
}

// Ensure AMQPNotifier implements Notifier.
var _ Notifier = (*AMQPNotifier)(nil)
