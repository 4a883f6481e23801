package redis

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"musicosbooking.pt/api/pkg/models"
)

const CartTTL = 1 * time.Hour

// CartStore keeps the server side cart of each authenticated user. The set
// cart:{uid} lists line ids and every line lives in its own hash
// cart:{uid}:item:{id}.
type CartStore struct {
	client *redisclient.Client
	ttl    time.Duration
}

func NewCartStore(client *redisclient.Client) *CartStore {
	return &CartStore{client: client, ttl: CartTTL}
}

func cartKey(uid string) string {
	return fmt.Sprintf("cart:%s", uid)
}

func cartItemKey(uid, id string) string {
	return fmt.Sprintf("cart:%s:item:%s", uid, id)
}

// Get returns the cart of uid; a missing cart is empty, not an error.
func (s *CartStore) Get(ctx context.Context, uid string) (*models.Cart, error) {
	ids, err := s.client.SMembers(ctx, cartKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %s: %w", uid, err)
	}

	cart := models.NewCart()
	if len(ids) == 0 {
		return cart, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redisclient.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, cartItemKey(uid, id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to read cart items %s: %w", uid, err)
	}

	type line struct {
		item    models.CartItem
		addedAt int64
	}
	lines := make([]line, 0, len(ids))
	for i, cmd := range cmds {
		data := cmd.Val()
		if len(data) == 0 {
			continue
		}
		item := models.CartItem{ID: ids[i], Title: data["title"]}
		if price, err := decimal.NewFromString(data["price"]); err == nil {
			item.Price = price
		}
		if qty, err := strconv.Atoi(data["quantity"]); err == nil {
			item.Quantity = qty
		}
		addedAt, _ := strconv.ParseInt(data["added_at"], 10, 64)
		if item.Validate() != nil {
			continue
		}
		lines = append(lines, line{item: item, addedAt: addedAt})
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].addedAt != lines[j].addedAt {
			return lines[i].addedAt < lines[j].addedAt
		}
		return lines[i].item.ID < lines[j].item.ID
	})

	for _, l := range lines {
		cart.Items = append(cart.Items, l.item)
	}
	return cart, nil
}

// AddItem merges item into the stored cart. The first price seen for a line
// is kept, as models.Cart does.
func (s *CartStore) AddItem(ctx context.Context, uid string, item models.CartItem) (*models.Cart, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}

	ids, err := s.client.SMembers(ctx, cartKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %s: %w", uid, err)
	}

	key := cartItemKey(uid, item.ID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, cartKey(uid), item.ID)
	pipe.HSetNX(ctx, key, "price", item.Price.String())
	pipe.HSetNX(ctx, key, "title", item.Title)
	pipe.HSetNX(ctx, key, "added_at", strconv.FormatInt(time.Now().UnixNano(), 10))
	pipe.HIncrBy(ctx, key, "quantity", int64(item.Quantity))
	s.touch(ctx, pipe, uid, append(ids, item.ID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to add %s to cart %s: %w", item.ID, uid, err)
	}
	return s.Get(ctx, uid)
}

// SetQuantity replaces the quantity of a line; zero removes it.
func (s *CartStore) SetQuantity(ctx context.Context, uid, id string, quantity int) (*models.Cart, error) {
	ids, err := s.client.SMembers(ctx, cartKey(uid)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart %s: %w", uid, err)
	}
	if !slices.Contains(ids, id) {
		return nil, models.ErrCartItemNotFound
	}
	if quantity <= 0 {
		return s.RemoveItem(ctx, uid, id)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, cartItemKey(uid, id), "quantity", quantity)
	s.touch(ctx, pipe, uid, ids)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to update %s in cart %s: %w", id, uid, err)
	}
	return s.Get(ctx, uid)
}

// RemoveItem is idempotent.
func (s *CartStore) RemoveItem(ctx context.Context, uid, id string) (*models.Cart, error) {
	pipe := s.client.TxPipeline()
	pipe.SRem(ctx, cartKey(uid), id)
	pipe.Del(ctx, cartItemKey(uid, id))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to remove %s from cart %s: %w", id, uid, err)
	}
	return s.Get(ctx, uid)
}

func (s *CartStore) Clear(ctx context.Context, uid string) error {
	ids, err := s.client.SMembers(ctx, cartKey(uid)).Result()
	if err != nil {
		return fmt.Errorf("failed to read cart %s: %w", uid, err)
	}
	keys := []string{cartKey(uid)}
	for _, id := range ids {
		keys = append(keys, cartItemKey(uid, id))
	}
	return s.client.Del(ctx, keys...).Err()
}

// touch slides the TTL of the index and of every line together.
func (s *CartStore) touch(ctx context.Context, pipe redisclient.Pipeliner, uid string, ids []string) {
	pipe.Expire(ctx, cartKey(uid), s.ttl)
	for _, id := range ids {
		pipe.Expire(ctx, cartItemKey(uid, id), s.ttl)
	}
}
