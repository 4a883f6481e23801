package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/models"
)

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher sends order events as persistent JSON messages routed by event type.
type Publisher struct {
	mu       sync.Mutex
	ch       publishChannel
	exchange string
}

func NewPublisher(ch publishChannel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.PublishWithContext(ctx,
		p.exchange,         // exchange
		string(event.Type), // routing key, e.g. order.created
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    event.OccurredAt,
			Type:         string(event.Type),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("could not publish %s: %w", event.Type, err)
	}
	return nil
}

// NoopPublisher drops events. It stands in when RABBITMQ_URL is unset.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, event models.OrderEvent) error {
	log.Debug().Str("type", string(event.Type)).Str("order", event.OrderID).Msg("rabbit: event dropped, no broker configured")
	return nil
}
