package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/internal/router"
	"musicosbooking.pt/api/pkg/accounts"
	"musicosbooking.pt/api/pkg/checkout"
	"musicosbooking.pt/api/pkg/global"
	"musicosbooking.pt/api/pkg/mail"
	"musicosbooking.pt/api/pkg/mongo"
	"musicosbooking.pt/api/pkg/payment"
	"musicosbooking.pt/api/pkg/quotes"
	"musicosbooking.pt/api/pkg/rabbit"
	"musicosbooking.pt/api/pkg/redis"
	"musicosbooking.pt/api/pkg/security"
)

const (
	quoteLimit      = 10
	quoteWindow     = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	envErr := godotenv.Load()
	cfg := global.LoadConfig()
	global.SetupLogger(cfg)
	if envErr != nil {
		log.Debug().Err(envErr).Msg(".env not loaded, using process environment")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	mongoClient, err := mongo.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := global.GetDefaultTimer()
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()
	db := mongo.GetDatabase(mongoClient, cfg)

	ctx, cancel := global.GetDefaultTimer()
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		log.Error().Err(err).Msg("failed to ensure indexes")
	}
	cancel()

	rdb := redis.NewClient(cfg)
	defer rdb.Close()
	if err := redis.Ping(rdb); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddress).Msg("failed to connect to Redis")
	}

	var events checkout.EventPublisher = rabbit.NoopPublisher{}
	if cfg.RabbitURL != "" {
		broker, err := rabbit.Connect(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer broker.Close()
		events = broker.Publisher()
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, order events are not published")
	}

	sender, err := mail.NewSender(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure mail")
	}

	listings := mongo.NewListingStore(db)
	catalog := redis.NewListingCache(rdb, listings)
	attempts := redis.NewAttemptStore(rdb)

	checkoutSvc := checkout.NewService(checkout.Dependencies{
		Orders: mongo.NewOrderStore(db),
		Blobs:  mongo.NewProofStore(db, cfg.PublicBaseURL),
		Prices: catalog,
		Events: events,
		Logs:   mongo.NewOrderLogStore(db),
	}, checkout.Settings{
		Bank:          payment.BankDetailsFromConfig(cfg),
		PayPalAccount: cfg.PayPalAccount,
		OrderTTL:      cfg.OrderTTL,
	})

	accountsSvc := accounts.NewService(
		mongo.NewUserStore(db),
		redis.NewSessionStore(rdb),
		security.NewLimiter(attempts, security.DefaultMaxAttempts, security.DefaultWindow, nil),
		accounts.Settings{SessionTTL: cfg.SessionTTL},
	)

	if cfg.AdminAPIKey == "" {
		log.Warn().Msg("ADMIN_API_KEY not set, admin routes will reject every request")
	}

	handler := &router.Handler{
		Checkout:     checkoutSvc,
		Accounts:     accountsSvc,
		Quotes:       quotes.NewService(sender, cfg.EmailReceive),
		Carts:        redis.NewCartStore(rdb),
		Listings:     listings,
		Catalog:      catalog,
		CSRF:         security.NewCSRF(redis.NewTokenStore(rdb), security.DefaultCSRFTTL, nil),
		QuoteLimiter: security.NewLimiter(attempts, quoteLimit, quoteWindow, nil),
		Health: map[string]router.HealthCheck{
			"database": mongo.Check(mongoClient),
			"redis":    redis.Check(rdb),
		},
		AdminAPIKey: cfg.AdminAPIKey,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewEngine(cfg, handler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server is running")
	if err := serve(srv, quit); err != nil {
		// returning runs the deferred Mongo, Redis and broker cleanup
		log.Error().Err(err).Msg("Failed to run server")
	}
}

// serve runs srv until it fails or a signal arrives on quit, then shuts it
// down gracefully.
func serve(srv *http.Server, quit <-chan os.Signal) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-quit:
	}
	log.Warn().Msg("shutting down...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shut down: %w", err)
	}
	return nil
}
