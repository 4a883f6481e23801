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

// ListingStore keeps the performances musicians offer. It is the loader
// behind the Redis listing cache.
type ListingStore struct {
	collection *mongo.Collection
}

func NewListingStore(db *mongo.Database) *ListingStore {
	return &ListingStore{collection: db.Collection(ListingsCollection)}
}

func (s *ListingStore) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID.IsZero() {
		listing.ID = bson.NewObjectID()
	}
	if _, err := s.collection.InsertOne(ctx, listing); err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

// Listing returns checkout.ErrListingNotFound for unknown or malformed ids.
func (s *ListingStore) Listing(ctx context.Context, id string) (*models.Listing, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, checkout.ErrListingNotFound
	}

	var listing models.Listing
	err = s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&listing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, checkout.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}
	return &listing, nil
}

// ListActive returns active listings, cheapest first.
func (s *ListingStore) ListActive(ctx context.Context, limit int64) ([]models.Listing, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "price", Value: 1}}).
		SetLimit(limit)
	listings, err := findAll[models.Listing](ctx, s.collection, bson.D{{Key: "status", Value: models.ListingActive}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return listings, nil
}

func (s *ListingStore) SetStatus(ctx context.Context, id, musicianUID, status string, fields map[string]any) error {
	oid, err := objectID(id)
	if err != nil {
		return checkout.ErrListingNotFound
	}
	set := map[string]any{"status": status}
	for k, v := range fields {
		set[k] = v
	}
	filter := guardFilter(oid, map[string]any{"musician_uid": musicianUID})
	res, err := s.collection.UpdateOne(ctx, filter, setFields(set))
	if err != nil {
		return fmt.Errorf("failed to update listing %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return checkout.ErrListingNotFound
	}
	return nil
}
