package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"

	"musicosbooking.pt/api/pkg/models"
)

// CountByStatus buckets every order by status with its count and the sum of
// total_amount, in lifecycle order.
func (s *OrderStore) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	pipeline := bson.A{
		bson.D{
			{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$status"},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "total_amount", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			}},
		},
		bson.D{
			{Key: "$addFields", Value: bson.D{
				{Key: "rank", Value: bson.D{
					{Key: "$switch", Value: bson.D{
						{Key: "branches", Value: bson.A{
							bson.D{
								{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", models.StatusPending}}}},
								{Key: "then", Value: 1},
							},
							bson.D{
								{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", models.StatusPaid}}}},
								{Key: "then", Value: 2},
							},
							bson.D{
								{Key: "case", Value: bson.D{{Key: "$eq", Value: bson.A{"$_id", models.StatusConfirmed}}}},
								{Key: "then", Value: 3},
							},
						}},
						{Key: "default", Value: 99},
					}},
				}},
			}},
		},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "rank", Value: 1}}}},
		bson.D{
			{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 1},
				{Key: "count", Value: 1},
				{Key: "total_amount", Value: bson.D{{Key: "$round", Value: bson.A{"$total_amount", 2}}}},
			}},
		},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate orders: %w", err)
	}
	defer cursor.Close(ctx)

	counts := []models.StatusCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, fmt.Errorf("failed to decode order summary: %w", err)
	}

	return counts, nil
}
