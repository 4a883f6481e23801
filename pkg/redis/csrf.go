package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"musicosbooking.pt/api/pkg/security"
)

// TokenStore keeps CSRF tokens as csrf:{token} -> expiry in millis.
type TokenStore struct {
	client *redisclient.Client
}

func NewTokenStore(client *redisclient.Client) *TokenStore {
	return &TokenStore{client: client}
}

var _ security.TokenStore = (*TokenStore)(nil)

func csrfKey(token string) string {
	return "csrf:" + token
}

func (s *TokenStore) Save(ctx context.Context, token string, expiresAt time.Time, ttl time.Duration) error {
	if ttl < time.Second {
		ttl = time.Second
	}
	return s.client.Set(ctx, csrfKey(token), expiresAt.UnixMilli(), ttl).Err()
}

func (s *TokenStore) Take(ctx context.Context, token string) (time.Time, bool, error) {
	raw, err := s.client.GetDel(ctx, csrfKey(token)).Result()
	if errors.Is(err, redisclient.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read csrf token: %w", err)
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}
