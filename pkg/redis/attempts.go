package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redisclient "github.com/redis/go-redis/v9"

	"musicosbooking.pt/api/pkg/security"
)

// hitScript prunes the window, records the attempt when under the limit and
// reports {allowed, count, oldest ms} in one round trip.
var hitScript = redisclient.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < max then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
	oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// AttemptStore is a sorted set per key scored by attempt time in millis.
type AttemptStore struct {
	client *redisclient.Client
}

func NewAttemptStore(client *redisclient.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

var _ security.AttemptStore = (*AttemptStore)(nil)

func attemptKey(key string) string {
	return "ratelimit:" + key
}

func (s *AttemptStore) Hit(ctx context.Context, key string, now time.Time, window time.Duration, max int) (security.Window, error) {
	res, err := hitScript.Run(ctx, s.client, []string{attemptKey(key)},
		now.UnixMilli(), window.Milliseconds(), max, uuid.NewString()).Int64Slice()
	if err != nil {
		return security.Window{}, fmt.Errorf("failed to record attempt for %s: %w", key, err)
	}
	if len(res) != 3 {
		return security.Window{}, fmt.Errorf("unexpected rate limit reply %v", res)
	}
	return security.Window{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		Oldest:  time.UnixMilli(res[2]).In(now.Location()),
	}, nil
}

func (s *AttemptStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, attemptKey(key)).Err()
}
