package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/garimpo/backend/internal/domain/items"
)

const listingKeyPrefix = "listings:"

// Lister is the browse path of the items service.
type Lister interface {
	ListItems(ctx context.Context, query items.ListItemsQuery) (*items.ListItemsResult, error)
}

// ListingCache is a read-through cache in front of the browse/list path.
// Listing reads may be stale up to the TTL; there is no invalidation.
// Redis errors are logged and never surfaced; the database remains the
// fallback.
type ListingCache struct {
	Lister

	Redis  *redis.Client
	TTL    time.Duration
	Logger *slog.Logger
}

// ListItems serves the page from redis when possible, falling back to the
// underlying service and populating the cache on a miss.
func (c *ListingCache) ListItems(ctx context.Context, query items.ListItemsQuery) (*items.ListItemsResult, error) {
	// Normalize before keying so equivalent queries (page 0 vs page 1,
	// default vs explicit page size) share one cache entry.
	query = query.Normalize()
	key := listingKey(query)

	val, err := c.Redis.Get(ctx, key).Result()
	switch {
	case err == redis.Nil:
		// do nothing
	case err != nil:
		c.Logger.Error("can't get listings from redis", slog.Any("error", err))
	default:
		var cached items.ListItemsResult
		if err := json.Unmarshal([]byte(val), &cached); err != nil {
			c.Logger.Error("can't decode cached listings", slog.String("key", key), slog.Any("error", err))
			break
		}
		return &cached, nil
	}

	// slower path - go to DB
	result, err := c.Lister.ListItems(ctx, query)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		c.Logger.Error("can't encode listings for cache", slog.Any("error", err))
		return result, nil
	}

	if err := c.Redis.Set(ctx, key, encoded, c.TTL).Err(); err != nil {
		c.Logger.Error("can't set listings in redis", slog.Any("error", err))
	}

	return result, nil
}

// listings:status:category:owner:page:page_size
func listingKey(q items.ListItemsQuery) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%d", listingKeyPrefix, q.Status, q.Category, q.OwnerID, q.Page, q.PageSize)
}
