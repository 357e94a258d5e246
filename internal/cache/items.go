// Package cache provides a Redis-backed read-through cache in front of an
// item store. Every mutation bumps a generation counter, and lists are cached
// under the generation read before the store was queried, so a list fetched
// before a write can never be served after it.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/store"
)

// ListKey prefixes the keys holding cached item lists, one per generation.
const ListKey = "recyclehub:items:all"

// GenerationKey holds the counter bumped by every mutation.
const GenerationKey = "recyclehub:items:gen"

// DefaultTTL bounds staleness when another process writes the same store.
const DefaultTTL = 5 * time.Minute

// Client is the subset of redis.Cmdable the cache uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// ItemStore decorates a store.ItemStore with a cached ListItems.
type ItemStore struct {
	inner  store.ItemStore
	client Client
	ttl    time.Duration
}

var _ store.ItemStore = (*ItemStore)(nil)

// NewItemStore wraps inner. A non-positive ttl uses DefaultTTL.
func NewItemStore(inner store.ItemStore, client Client, ttl time.Duration) *ItemStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ItemStore{inner: inner, client: client, ttl: ttl}
}

// Connect opens a Redis client and verifies it responds.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// listKey names the cached list for a generation.
func listKey(gen int64) string {
	return ListKey + ":" + strconv.FormatInt(gen, 10)
}

// generation returns the current mutation counter. A missing counter is
// generation zero.
func (c *ItemStore) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, GenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// ListItems serves the list from Redis, falling back to the inner store on a
// miss or any cache error.
func (c *ItemStore) ListItems(ctx context.Context) ([]model.Item, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		slog.Warn("item cache generation read failed", "error", err)
		return c.inner.ListItems(ctx)
	}
	key := listKey(gen)

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var items []model.Item
		uerr := json.Unmarshal(data, &items)
		if uerr == nil {
			return items, nil
		}
		slog.Warn("discarding undecodable cached item list", "error", uerr)
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("item cache read failed", "error", err)
	}

	items, err := c.inner.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(items); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Warn("item cache write failed", "error", err)
		}
	}
	return items, nil
}

// GetItem is not cached.
func (c *ItemStore) GetItem(ctx context.Context, id string) (*model.Item, error) {
	return c.inner.GetItem(ctx, id)
}

// CreateItem creates through the inner store and invalidates.
func (c *ItemStore) CreateItem(ctx context.Context, item *model.Item) error {
	if err := c.inner.CreateItem(ctx, item); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// UpdateItemStatus updates through the inner store and invalidates.
func (c *ItemStore) UpdateItemStatus(ctx context.Context, id, status string) (*model.Item, error) {
	item, err := c.inner.UpdateItemStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx)
	return item, nil
}

// DeleteItem deletes through the inner store and invalidates.
func (c *ItemStore) DeleteItem(ctx context.Context, id string) error {
	if err := c.inner.DeleteItem(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// invalidate moves readers to a fresh generation. Lists cached under older
// generations are never read again and expire with their TTL.
func (c *ItemStore) invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, GenerationKey).Err(); err != nil {
		slog.Warn("item cache invalidation failed", "error", err)
	}
}
