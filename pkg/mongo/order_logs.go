package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"musicosbooking.pt/api/pkg/checkout"
	"musicosbooking.pt/api/pkg/models"
)

// OrderLogStore is the append-only audit trail of order changes.
type OrderLogStore struct {
	collection *mongo.Collection
}

func NewOrderLogStore(db *mongo.Database) *OrderLogStore {
	return &OrderLogStore{collection: db.Collection(OrderLogsCollection)}
}

var _ checkout.OrderLogStore = (*OrderLogStore)(nil)

func (s *OrderLogStore) Append(ctx context.Context, entry *models.OrderLog) error {
	if entry.ID.IsZero() {
		entry.ID = bson.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append order log: %w", err)
	}
	return nil
}

func (s *OrderLogStore) ListByOrder(ctx context.Context, orderID string) ([]models.OrderLog, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: 1},
		{Key: "_id", Value: 1},
	})
	entries, err := findAll[models.OrderLog](ctx, s.collection, bson.D{{Key: "order_id", Value: orderID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history of %s: %w", orderID, err)
	}
	return entries, nil
}
