// Package security holds the brute-force limiter and the CSRF token manager.
// Both take an injected clock and a storage backend so several API instances
// can share state through Redis.
package security

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxAttempts = 5
	DefaultWindow      = 15 * time.Minute
)

// Window is the state of one key after a Hit.
type Window struct {
	Allowed bool
	Count   int
	Oldest  time.Time
}

// AttemptStore keeps attempt timestamps per key. Hit must record the attempt
// only when fewer than max attempts fall inside (now-window, now].
type AttemptStore interface {
	Hit(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Window, error)
	Reset(ctx context.Context, key string) error
}

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter is a sliding window rate limiter.
type Limiter struct {
	store  AttemptStore
	now    func() time.Time
	max    int
	window time.Duration
}

func NewLimiter(store AttemptStore, max int, window time.Duration, now func() time.Time) *Limiter {
	if max <= 0 {
		max = DefaultMaxAttempts
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, now: now, max: max, window: window}
}

func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := l.now()
	w, err := l.store.Hit(ctx, key, now, l.window, l.max)
	if err != nil {
		return Decision{}, err
	}
	if !w.Allowed {
		log.Warn().Str("event", "rate_limit_exceeded").Str("key", key).Int("attempts", w.Count).Msg("security event")
		retry := w.Oldest.Add(l.window).Sub(now)
		if retry < 0 {
			retry = 0
		}
		return Decision{Allowed: false, RetryAfter: retry}, nil
	}
	return Decision{Allowed: true, Remaining: l.max - w.Count}, nil
}

// Reset forgets the attempts of key, e.g. after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
