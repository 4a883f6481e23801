package mongo

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	idxUserEmail        = "idx_user_email_unique"
	idxUserNIF          = "idx_user_nif_unique"
	idxPaymentReference = "idx_payment_reference_unique"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Users
	{
		CollectionName: UsersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idxUserEmail),
		},
	},
	// NIF is optional, so only documents that carry one are indexed
	{
		CollectionName: UsersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "nif", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName(idxUserNIF),
		},
	},

	// Listings
	{
		CollectionName: ListingsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "musician_uid", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_musician_listings"),
		},
	},
	{
		CollectionName: ListingsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "price", Value: 1},
			},
			Options: options.Index().SetName("idx_status_price"),
		},
	},

	// Orders
	// Customer order history, newest first
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "uid", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_user_orders"),
		},
	},
	// Admin queue of pending orders and the status summary
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_status_created"),
		},
	},
	{
		CollectionName: OrdersCollection,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "payment_reference", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(idxPaymentReference),
		},
	},

	// Order logs
	{
		CollectionName: OrderLogsCollection,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "order_id", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_order_history"),
		},
	},
}

// EnsureIndexes creates every index the stores rely on. Existing indexes with
// the same definition are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	log.Info().Msg("Starting index creation...")

	for _, idxConfig := range requiredIndexes {
		collection := db.Collection(idxConfig.CollectionName)

		indexName, err := collection.Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			log.Error().Err(err).Str("collection", idxConfig.CollectionName).Msg("Error creating index")
			return err
		}

		log.Info().Str("index", indexName).Str("collection", idxConfig.CollectionName).Msg("Created index")
	}

	log.Info().Int("count", len(requiredIndexes)).Msg("All indexes created successfully")
	return nil
}
