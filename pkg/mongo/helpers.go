package mongo

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var errInvalidID = errors.New("invalid object id")

// findAll runs a find and decodes every document into T.
func findAll[T any](ctx context.Context, collection *mongo.Collection, filter any, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func objectID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		return bson.NilObjectID, errInvalidID
	}
	return id, nil
}

// duplicateIndex reports the name of the unique index a write violated, or "".
func duplicateIndex(err error, names ...string) string {
	if !mongo.IsDuplicateKeyError(err) {
		return ""
	}
	msg := err.Error()
	for _, name := range names {
		if strings.Contains(msg, name) {
			return name
		}
	}
	return "unknown"
}

// guardFilter matches the document by id while every guard field still holds
// its expected value.
func guardFilter(id bson.ObjectID, guard map[string]any) bson.D {
	filter := bson.D{{Key: "_id", Value: id}}
	for _, key := range slices.Sorted(maps.Keys(guard)) {
		filter = append(filter, bson.E{Key: key, Value: guard[key]})
	}
	return filter
}

func setFields(fields map[string]any) bson.D {
	set := bson.D{}
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		set = append(set, bson.E{Key: key, Value: fields[key]})
	}
	return bson.D{{Key: "$set", Value: set}}
}
