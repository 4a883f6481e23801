package models

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanAdvanceTo(t *testing.T) {
	assert.True(t, StatusPending.CanAdvanceTo(StatusPaid))
	assert.True(t, StatusPaid.CanAdvanceTo(StatusConfirmed))

	assert.False(t, StatusPending.CanAdvanceTo(StatusConfirmed))
	assert.False(t, StatusPaid.CanAdvanceTo(StatusPending))
	assert.False(t, StatusPaid.CanAdvanceTo(StatusPaid))
	assert.False(t, StatusConfirmed.CanAdvanceTo(StatusPaid))
	assert.False(t, OrderStatus("pendente").CanAdvanceTo(StatusPaid))
}

func TestOrder_UpdateStatusStampsTimeline(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	o := &Order{Status: StatusPending}
	o.SetTimestamps(now, 7*24*time.Hour)

	assert.Equal(t, now.Add(7*24*time.Hour), o.ExpiresAt)
	assert.False(t, o.UpdateStatus(StatusConfirmed, now))
	assert.Nil(t, o.ConfirmedAt)

	later := now.Add(time.Hour)
	require.True(t, o.UpdateStatus(StatusPaid, later))
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, later, *o.PaidAt)
	assert.True(t, o.HasBeenPaid())
	assert.Equal(t, now, o.CreatedAt)
}

func TestOrder_IsExpired(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	o := &Order{Status: StatusPending}
	o.SetTimestamps(now, 7*24*time.Hour)

	assert.False(t, o.IsExpired(now.Add(6*24*time.Hour)))
	assert.True(t, o.IsExpired(now.Add(8*24*time.Hour)))

	o.Status = StatusPaid
	assert.False(t, o.IsExpired(now.Add(8*24*time.Hour)))
}

func TestOrder_GetItemCount(t *testing.T) {
	o := &Order{Items: []CartItem{item("a", 1, 2), item("b", 1, 3)}}
	assert.Equal(t, 5, o.GetItemCount())
}

func TestIdentityFromContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	_, ok = IdentityFromContext(ContextWithIdentity(context.Background(), Identity{}))
	assert.False(t, ok)

	id, ok := IdentityFromContext(ContextWithIdentity(context.Background(), Identity{UID: "u1", Type: UserCompany}))
	require.True(t, ok)
	assert.Equal(t, "u1", id.UID)
}

func TestQuoteRequest_MissingRequired(t *testing.T) {
	q := QuoteRequest{
		Name: "Ana", Email: "a@b.pt", Phone: "912345678", EventType: "Casamento",
		EventDate: "2027-06-01", Location: "Porto", Message: "Olá",
	}
	assert.False(t, q.MissingRequired())

	q.Location = ""
	assert.True(t, q.MissingRequired())
}
