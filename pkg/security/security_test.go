package security

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
}

func TestLimiter_SlidingWindow(t *testing.T) {
	clock := newClock()
	l := NewLimiter(NewMemoryStore(), 5, 15*time.Minute, clock.Now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := l.Allow(ctx, "login:a@b.pt")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "attempt %d", i+1)
		assert.Equal(t, 4-i, d.Remaining)
		clock.Advance(time.Minute)
	}

	d, err := l.Allow(ctx, "login:a@b.pt")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	// oldest attempt at 12:00, now 12:05
	assert.Equal(t, 10*time.Minute, d.RetryAfter)

	other, err := l.Allow(ctx, "login:c@d.pt")
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	// first attempt leaves the window at 12:15
	clock.Advance(10 * time.Minute)
	d, err = l.Allow(ctx, "login:a@b.pt")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_Reset(t *testing.T) {
	clock := newClock()
	l := NewLimiter(NewMemoryStore(), 2, time.Minute, clock.Now)
	ctx := context.Background()

	for range 2 {
		_, err := l.Allow(ctx, "k")
		require.NoError(t, err)
	}
	d, _ := l.Allow(ctx, "k")
	assert.False(t, d.Allowed)

	require.NoError(t, l.Reset(ctx, "k"))
	d, _ = l.Allow(ctx, "k")
	assert.True(t, d.Allowed)
}

func TestCSRF_SingleUse(t *testing.T) {
	clock := newClock()
	c := NewCSRF(NewMemoryStore(), time.Hour, clock.Now)
	ctx := context.Background()

	tok, err := c.Issue(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)
	assert.Equal(t, clock.Now().Add(time.Hour), tok.ExpiresAt)

	require.NoError(t, c.Validate(ctx, tok.Value))
	assert.True(t, errors.Is(c.Validate(ctx, tok.Value), ErrCSRFInvalid))
}

func TestCSRF_Rejections(t *testing.T) {
	clock := newClock()
	c := NewCSRF(NewMemoryStore(), time.Hour, clock.Now)
	ctx := context.Background()

	assert.True(t, errors.Is(c.Validate(ctx, ""), ErrCSRFMissing))
	assert.True(t, errors.Is(c.Validate(ctx, "forged"), ErrCSRFInvalid))

	tok, err := c.Issue(ctx)
	require.NoError(t, err)
	clock.Advance(time.Hour + time.Second)
	assert.True(t, errors.Is(c.Validate(ctx, tok.Value), ErrCSRFExpired))
	assert.True(t, errors.Is(c.Validate(ctx, tok.Value), ErrCSRFInvalid), "expired tokens are removed")
}
