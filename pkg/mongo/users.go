package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"musicosbooking.pt/api/pkg/accounts"
	"musicosbooking.pt/api/pkg/models"
)

type UserStore struct {
	collection *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{collection: db.Collection(UsersCollection)}
}

var _ accounts.UserStore = (*UserStore)(nil)

func (s *UserStore) Create(ctx context.Context, user *models.User) (string, error) {
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	_, err := s.collection.InsertOne(ctx, user)
	switch duplicateIndex(err, idxUserEmail, idxUserNIF) {
	case "":
	case idxUserNIF:
		return "", accounts.ErrNIFTaken
	default:
		return "", accounts.ErrEmailTaken
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert user: %w", err)
	}
	return user.UID(), nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*models.User, error) {
	var user models.User
	err := s.collection.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, accounts.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *UserStore) ByID(ctx context.Context, uid string) (*models.User, error) {
	oid, err := objectID(uid)
	if err != nil {
		return nil, accounts.ErrUserNotFound
	}
	return s.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (s *UserStore) RecordLogin(ctx context.Context, uid string, at time.Time) error {
	oid, err := objectID(uid)
	if err != nil {
		return accounts.ErrUserNotFound
	}
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "login_count", Value: 1}}},
		{Key: "$set", Value: bson.D{{Key: "last_login", Value: at}}},
	}
	res, err := s.collection.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, update)
	if err != nil {
		return fmt.Errorf("failed to record login of %s: %w", uid, err)
	}
	if res.MatchedCount == 0 {
		return accounts.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, uid string, fields map[string]any) error {
	oid, err := objectID(uid)
	if err != nil {
		return accounts.ErrUserNotFound
	}
	res, err := s.collection.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, setFields(fields))
	if err != nil {
		return fmt.Errorf("failed to update user %s: %w", uid, err)
	}
	if res.MatchedCount == 0 {
		return accounts.ErrUserNotFound
	}
	return nil
}
