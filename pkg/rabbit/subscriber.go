package rabbit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/models"
)

var ErrConsumerClosed = errors.New("rabbit: delivery channel closed")

type consumeChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Handler func(ctx context.Context, event models.OrderEvent) error

type Subscriber struct {
	ch       consumeChannel
	exchange string
}

func NewSubscriber(ch consumeChannel, exchange string) *Subscriber {
	return &Subscriber{ch: ch, exchange: exchange}
}

// Subscribe binds a durable queue to every routing key and feeds deliveries to
// handler until ctx is done. A failed delivery is requeued once, then dropped.
func (s *Subscriber) Subscribe(ctx context.Context, queue string, bindings []string, handler Handler) error {
	q, err := s.ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("could not declare queue: %w", err)
	}

	for _, key := range bindings {
		if err := s.ch.QueueBind(q.Name, key, s.exchange, false, nil); err != nil {
			return fmt.Errorf("could not bind queue to %s: %w", key, err)
		}
	}

	if err := s.ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("could not set prefetch: %w", err)
	}

	msgs, err := s.ch.Consume(
		q.Name, // queue
		"",     // consumer tag
		false,  // auto-ack
		false,  // exclusive
		false,  // no-local
		false,  // no-wait
		nil,    // args
	)
	if err != nil {
		return fmt.Errorf("could not start consume: %w", err)
	}

	log.Info().Str("queue", q.Name).Strs("bindings", bindings).Msg("rabbit: consuming")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return ErrConsumerClosed
			}
			deliver(ctx, d, handler)
		}
	}
}

func deliver(ctx context.Context, d amqp.Delivery, handler Handler) {
	var event models.OrderEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		log.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("rabbit: dropping malformed event")
		_ = d.Reject(false)
		return
	}

	if err := handler(ctx, event); err != nil {
		log.Error().Err(err).Str("routing_key", d.RoutingKey).Str("order", event.OrderID).Bool("redelivered", d.Redelivered).Msg("rabbit: handler failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}
