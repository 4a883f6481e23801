package security

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"musicosbooking.pt/api/pkg/apperr"
)

const DefaultCSRFTTL = time.Hour

var (
	ErrCSRFMissing = apperr.Forbidden("csrf_missing", "Token CSRF obrigatório")
	ErrCSRFInvalid = apperr.Forbidden("csrf_invalid", "Token CSRF inválido")
	ErrCSRFExpired = apperr.Forbidden("csrf_expired", "Token CSRF expirado")
)

// TokenStore keeps issued CSRF tokens for ttl. Take removes the token and
// reports whether it existed.
type TokenStore interface {
	Save(ctx context.Context, token string, expiresAt time.Time, ttl time.Duration) error
	Take(ctx context.Context, token string) (time.Time, bool, error)
}

type Token struct {
	Value     string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CSRF issues single use tokens.
type CSRF struct {
	store TokenStore
	now   func() time.Time
	ttl   time.Duration
}

func NewCSRF(store TokenStore, ttl time.Duration, now func() time.Time) *CSRF {
	if ttl <= 0 {
		ttl = DefaultCSRFTTL
	}
	if now == nil {
		now = time.Now
	}
	return &CSRF{store: store, now: now, ttl: ttl}
}

func (c *CSRF) Issue(ctx context.Context) (Token, error) {
	tok := Token{Value: uuid.NewString(), ExpiresAt: c.now().Add(c.ttl)}
	if err := c.store.Save(ctx, tok.Value, tok.ExpiresAt, c.ttl); err != nil {
		return Token{}, apperr.External("Erro ao gerar token CSRF", err)
	}
	return tok, nil
}

// Validate consumes token. A token is accepted at most once.
func (c *CSRF) Validate(ctx context.Context, token string) error {
	if token == "" {
		return ErrCSRFMissing
	}
	expiresAt, found, err := c.store.Take(ctx, token)
	if err != nil {
		return apperr.External("Erro ao validar token CSRF", err)
	}
	if !found {
		log.Warn().Str("event", "csrf_token_invalid").Msg("security event")
		return ErrCSRFInvalid
	}
	if c.now().After(expiresAt) {
		log.Warn().Str("event", "csrf_token_expired").Msg("security event")
		return ErrCSRFExpired
	}
	return nil
}
