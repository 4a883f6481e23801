package redis

import (
	"context"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"

	"musicosbooking.pt/api/pkg/models"
)

// SessionStore keeps opaque bearer tokens as session:{token} hashes.
type SessionStore struct {
	client *redisclient.Client
}

func NewSessionStore(client *redisclient.Client) *SessionStore {
	return &SessionStore{client: client}
}

func sessionKey(token string) string {
	return "session:" + token
}

func resetKey(token string) string {
	return "password_reset:" + token
}

func (s *SessionStore) Create(ctx context.Context, token string, id models.Identity, ttl time.Duration) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(token), map[string]interface{}{
		"uid":   id.UID,
		"email": id.Email,
		"nome":  id.Name,
		"tipo":  string(id.Type),
	})
	pipe.Expire(ctx, sessionKey(token), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

// Lookup returns false for unknown or expired tokens.
func (s *SessionStore) Lookup(ctx context.Context, token string) (models.Identity, bool, error) {
	data, err := s.client.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("failed to read session: %w", err)
	}
	if data["uid"] == "" {
		return models.Identity{}, false, nil
	}
	return models.Identity{
		UID:   data["uid"],
		Email: data["email"],
		Name:  data["nome"],
		Type:  models.UserType(data["tipo"]),
	}, true, nil
}

func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

func (s *SessionStore) SaveResetToken(ctx context.Context, token, uid string, ttl time.Duration) error {
	return s.client.Set(ctx, resetKey(token), uid, ttl).Err()
}
