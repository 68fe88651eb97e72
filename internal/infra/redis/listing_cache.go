package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/linkpay/internal/core/domain"
	"github.com/vietddude/linkpay/internal/infra/storage"
)

// ListingCache implements storage.ListingCache on Redis.
type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ storage.ListingCache = (*ListingCache)(nil)

// NewListingCache creates a Redis-backed listing cache.
func NewListingCache(client *Client, ttl time.Duration) *ListingCache {
	return &ListingCache{rdb: client.rdb, ttl: ttl}
}

// Key helpers
func listingKey(ownerID string, collection domain.CollectionType) string {
	return fmt.Sprintf("listing:%s:%s", ownerID, collection)
}

// Get returns the cached listing, ok=false on miss.
func (c *ListingCache) Get(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
) ([]domain.OrderedItem, bool, error) {
	data, err := c.rdb.Get(ctx, listingKey(ownerID, collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get listing: %w", err)
	}

	var items []domain.OrderedItem
	if err := json.Unmarshal(data, &items); err != nil {
		// Corrupt entry, drop it
		c.rdb.Del(ctx, listingKey(ownerID, collection))
		return nil, false, nil
	}
	return items, true, nil
}

// Set stores a listing.
func (c *ListingCache) Set(
	ctx context.Context,
	ownerID string,
	collection domain.CollectionType,
	items []domain.OrderedItem,
) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	if err := c.rdb.Set(ctx, listingKey(ownerID, collection), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set listing: %w", err)
	}
	return nil
}

// Invalidate drops cached listings of the given collections.
func (c *ListingCache) Invalidate(ctx context.Context, ownerID string, collections ...domain.CollectionType) error {
	if len(collections) == 0 {
		return nil
	}
	keys := make([]string, len(collections))
	for i, collection := range collections {
		keys[i] = listingKey(ownerID, collection)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate listing: %w", err)
	}
	return nil
}
