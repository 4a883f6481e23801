// Command notifier consumes order events and sends the customer emails.
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/mail"
	"musicosbooking.pt/api/pkg/notify"
	"musicosbooking.pt/api/pkg/rabbit"
)

var bindings = []string{"order.*"}

func main() {
	_ = godotenv.Load()
	cfg := global.LoadConfig()
	global.SetupLogger(cfg)

	if cfg.RabbitURL == "" {
		log.Fatal().Msg("RABBITMQ_URL is not set")
	}

	sender, err := mail.NewSender(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure mail")
	}

	broker, err := rabbit.Connect(cfg.RabbitURL, cfg.EventsExchange)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer broker.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("queue", cfg.NotifierQueue).Strs("bindings", bindings).Msg("notifier started")
	err = broker.Subscriber().Subscribe(ctx, cfg.NotifierQueue, bindings, notify.New(sender).Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("notifier stopped")
		return
	}
	log.Warn().Msg("notifier shut down")
}
