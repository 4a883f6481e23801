package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"musicosbooking.pt/api/pkg/checkout"
	"musicosbooking.pt/api/pkg/models"
)

// OrderStore keeps orders in the orders collection.
type OrderStore struct {
	collection *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{collection: db.Collection(OrdersCollection)}
}

var _ checkout.OrderStore = (*OrderStore)(nil)

func (s *OrderStore) Create(ctx context.Context, order *models.Order) (string, error) {
	if order.ID.IsZero() {
		order.ID = bson.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, order); err != nil {
		if duplicateIndex(err, idxPaymentReference) == idxPaymentReference {
			order.ID = bson.NilObjectID
			return "", checkout.ErrDuplicateReference
		}
		order.ID = bson.NilObjectID
		return "", fmt.Errorf("failed to insert order: %w", err)
	}
	return order.ID.Hex(), nil
}

func (s *OrderStore) Get(ctx context.Context, id string) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, checkout.ErrOrderNotFound
	}

	var order models.Order
	err = s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, checkout.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	return &order, nil
}

func (s *OrderStore) Update(ctx context.Context, id string, guard, fields map[string]any) error {
	oid, err := objectID(id)
	if err != nil {
		return checkout.ErrOrderNotFound
	}

	res, err := s.collection.UpdateOne(ctx, guardFilter(oid, guard), setFields(fields))
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return checkout.ErrOrderNotFound
	}
	return nil
}

// ListByUser returns the orders of uid, newest first.
func (s *OrderStore) ListByUser(ctx context.Context, uid string) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	orders, err := findAll[models.Order](ctx, s.collection, bson.D{{Key: "uid", Value: uid}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders of %s: %w", uid, err)
	}
	return orders, nil
}

// ListByStatus returns up to limit orders in status, oldest first so the admin
// queue is worked in arrival order.
func (s *OrderStore) ListByStatus(ctx context.Context, status models.OrderStatus, limit int64) ([]models.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(limit)
	orders, err := findAll[models.Order](ctx, s.collection, bson.D{{Key: "status", Value: status}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s orders: %w", status, err)
	}
	return orders, nil
}
