package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/onvent/seat-ledger/internal/queue"
)

// Publisher sends ledger events to the message broker.  Publication is
// best-effort: the booking was already committed to the ledger when a
// publish happens, so failures are logged and returned but never undo
// the booking.
type Publisher interface {
	PublishTicketIssued(ctx context.Context, event queue.TicketIssuedEvent) error
	PublishTicketCancelled(ctx context.Context, event queue.TicketCancelledEvent) error
}

// AMQPPublisher publishes to RabbitMQ, dialing per publish.  Messages
// are marked persistent so issued/cancelled audit events survive broker
// restarts.
type AMQPPublisher struct{}

// NewAMQPPublisher returns a broker publisher using the URL resolved by
// queue.BrokerURL.
func NewAMQPPublisher() *AMQPPublisher { return &AMQPPublisher{} }

// PublishTicketIssued publishes a TicketIssuedEvent to the
// ticket.issued queue.
func (p *AMQPPublisher) PublishTicketIssued(ctx context.Context, event queue.TicketIssuedEvent) error {
	return publishJSON(ctx, queue.IssuedQueueName, event)
}

// PublishTicketCancelled publishes a TicketCancelledEvent to the
// ticket.cancelled queue.
func (p *AMQPPublisher) PublishTicketCancelled(ctx context.Context, event queue.TicketCancelledEvent) error {
	return publishJSON(ctx, queue.CancelledQueueName, event)
}

func publishJSON(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(queue.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
