package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"musicosbooking.pt/api/pkg/global"
)

const (
	OrdersCollection    = "orders"
	UsersCollection     = "users"
	ListingsCollection  = "listings"
	OrderLogsCollection = "order_logs"
	ProofsBucket        = "proofs"
)

// Connect creates a client for cfg.MongoURI and verifies it with a ping.
func Connect(cfg global.Config) (*mongo.Client, error) {
	if cfg.MongoURI == "" {
		return nil, global.ErrMissingMongoURI
	}
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerAPIOptions(serverAPI).
		SetRegistry(NewRegistry())
	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	ctx, cancel := global.GetDefaultTimer()
	defer cancel()

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info().Str("database", cfg.MongoDatabase).Msg("Connected to MongoDB successfully")
	return client, nil
}

func GetDatabase(client *mongo.Client, cfg global.Config) *mongo.Database {
	return client.Database(cfg.MongoDatabase)
}

func Check(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
}
