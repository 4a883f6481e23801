package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"musicosbooking.pt/api/pkg/models"
)

const ListingTTL = 24 * time.Hour

type ListingLoader interface {
	Listing(ctx context.Context, id string) (*models.Listing, error)
}

// ListingCache is a cache-aside layer over the listings collection. Concurrent
// misses for the same id share one load.
type ListingCache struct {
	client *redisclient.Client
	loader ListingLoader
	group  singleflight.Group
	ttl    time.Duration
}

func NewListingCache(client *redisclient.Client, loader ListingLoader) *ListingCache {
	return &ListingCache{client: client, loader: loader, ttl: ListingTTL}
}

func listingKey(id string) string {
	return fmt.Sprintf("listing:%s", id)
}

func (c *ListingCache) Listing(ctx context.Context, id string) (*models.Listing, error) {
	if listing, ok := c.cached(ctx, id); ok {
		return listing, nil
	}

	// the shared load must not fail because the caller that started it went away
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(id, func() (interface{}, error) {
		if listing, ok := c.cached(loadCtx, id); ok {
			return listing, nil
		}
		listing, err := c.loader.Listing(loadCtx, id)
		if err != nil {
			return nil, err
		}
		c.Store(loadCtx, listing)
		return listing, nil
	})
	if err != nil {
		return nil, err
	}
	listing := *v.(*models.Listing)
	return &listing, nil
}

func (c *ListingCache) cached(ctx context.Context, id string) (*models.Listing, bool) {
	raw, err := c.client.Get(ctx, listingKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redisclient.Nil) {
			log.Warn().Err(err).Str("listing", id).Msg("listing cache read failed")
		}
		return nil, false
	}
	var listing models.Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, false
	}
	return &listing, true
}

// Store caches listing; failures only cost a later reload.
func (c *ListingCache) Store(ctx context.Context, listing *models.Listing) {
	raw, err := json.Marshal(listing)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, listingKey(listing.ID.Hex()), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("listing", listing.ID.Hex()).Msg("listing cache write failed")
	}
}

func (c *ListingCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, listingKey(id)).Err()
}
