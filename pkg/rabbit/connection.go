// Package rabbit publishes order events to a topic exchange and consumes them
// in the notifier.
package rabbit

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const ExchangeType = "topic"

type Broker struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Connect dials url, retrying while the broker starts, and declares the
// durable topic exchange.
func Connect(url, exchange string) (*Broker, error) {
	var conn *amqp.Connection
	var err error

	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to RabbitMQ")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchange,     // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	log.Info().Str("exchange", exchange).Msg("Connected to RabbitMQ")
	return &Broker{conn: conn, ch: ch, exchange: exchange}, nil
}

func (b *Broker) Publisher() *Publisher {
	return NewPublisher(b.ch, b.exchange)
}

func (b *Broker) Subscriber() *Subscriber {
	return NewSubscriber(b.ch, b.exchange)
}

func (b *Broker) Close() {
	if b.ch != nil {
		_ = b.ch.Close()
	}
	if b.conn != nil {
		_ = b.conn.Close()
	}
}
