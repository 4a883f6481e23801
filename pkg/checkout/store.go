package checkout

import (
	"context"
	"io"

	"musicosbooking.pt/api/pkg/models"
)

// OrderStore persists orders. Create assigns order.ID and returns it in hex
// form. Get and Update return ErrOrderNotFound when no document matches.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) (string, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	// Update applies fields to the order only while every guard field still
	// holds its expected value. A nil guard updates unconditionally.
	Update(ctx context.Context, id string, guard, fields map[string]any) error
	ListByUser(ctx context.Context, uid string) ([]models.Order, error)
	ListByStatus(ctx context.Context, status models.OrderStatus, limit int64) ([]models.Order, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
}

// BlobStore keeps proof-of-payment files.
type BlobStore interface {
	Put(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	URL(ref string) string
	Open(ctx context.Context, ref string) (io.ReadCloser, string, error)
}

// PriceBook resolves the authoritative price of a cart line.
type PriceBook interface {
	Listing(ctx context.Context, id string) (*models.Listing, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

type OrderLogStore interface {
	Append(ctx context.Context, entry *models.OrderLog) error
	ListByOrder(ctx context.Context, orderID string) ([]models.OrderLog, error)
}
