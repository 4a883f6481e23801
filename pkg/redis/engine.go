package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"musicosbooking.pt/api/pkg/global"
)

func NewClient(cfg global.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddress,
		Password: cfg.RedisPassword,
		DB:       0,
		Protocol: 2,
	})
}

// Ping verifies the connection within the default timeout.
func Ping(client *redis.Client) error {
	ctx, cancel := global.GetDefaultTimer()
	defer cancel()
	return client.Ping(ctx).Err()
}

// Check is used by the health endpoint.
func Check(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
