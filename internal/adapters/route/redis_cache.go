package route

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xcixor/eld-route-planner/internal/ports"
)

// CachedRouteProvider decorates a RouteProvider with a Redis-backed
// result cache. Route geometry for a fixed location triple is stable
// enough to reuse across planning requests; cache failures degrade to
// the underlying provider and are logged, never fatal.
type CachedRouteProvider struct {
	inner ports.RouteProvider
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedRouteProvider(inner ports.RouteProvider, rdb *redis.Client, ttl time.Duration) *CachedRouteProvider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachedRouteProvider{inner: inner, rdb: rdb, ttl: ttl}
}

func cacheKey(current, pickup, dropoff string) string {
	return fmt.Sprintf("route:%s|%s|%s", current, pickup, dropoff)
}

func (c *CachedRouteProvider) GetRoute(ctx context.Context, current, pickup, dropoff string) (ports.RouteResult, error) {
	key := cacheKey(current, pickup, dropoff)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var cached ports.RouteResult
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		// A corrupt entry falls through to the provider and is rewritten.
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("route cache read failed key=%s err=%v", key, err)
	}

	result, err := c.inner.GetRoute(ctx, current, pickup, dropoff)
	if err != nil {
		return ports.RouteResult{}, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return result, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Printf("route cache write failed key=%s err=%v", key, err)
	}

	return result, nil
}
