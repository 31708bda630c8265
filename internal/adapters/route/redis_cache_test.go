package route

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/xcixor/eld-route-planner/internal/ports"
)

type countingProvider struct {
	inner ports.RouteProvider
	calls int
}

func (c *countingProvider) GetRoute(ctx context.Context, current, pickup, dropoff string) (ports.RouteResult, error) {
	c.calls++
	return c.inner.GetRoute(ctx, current, pickup, dropoff)
}

func TestCachedRouteProviderHitsCacheOnSecondCall(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mock := NewMockRouteProvider()
	mock.Add("A", "B", "C", ports.RouteResult{
		DistanceMiles: 1200,
		Waypoints: []ports.RouteWaypoint{
			{Name: "A"}, {Name: "B", ETASeconds: 3600}, {Name: "C", ETASeconds: 7200},
		},
	})
	counting := &countingProvider{inner: mock}
	cached := NewCachedRouteProvider(counting, rdb, time.Hour)

	ctx := context.Background()
	first, err := cached.GetRoute(ctx, "A", "B", "C")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	second, err := cached.GetRoute(ctx, "A", "B", "C")
	if err != nil {
		t.Fatalf("second call: %v", err)
	}

	if counting.calls != 1 {
		t.Errorf("provider calls = %d, want 1", counting.calls)
	}
	if second.DistanceMiles != first.DistanceMiles || len(second.Waypoints) != len(first.Waypoints) {
		t.Errorf("cached result differs: %+v vs %+v", second, first)
	}
}

func TestCachedRouteProviderExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mock := NewMockRouteProvider()
	mock.Add("A", "B", "C", ports.RouteResult{DistanceMiles: 500, Waypoints: []ports.RouteWaypoint{{Name: "A"}, {Name: "B"}, {Name: "C"}}})
	counting := &countingProvider{inner: mock}
	cached := NewCachedRouteProvider(counting, rdb, time.Minute)

	ctx := context.Background()
	if _, err := cached.GetRoute(ctx, "A", "B", "C"); err != nil {
		t.Fatalf("first call: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := cached.GetRoute(ctx, "A", "B", "C"); err != nil {
		t.Fatalf("post-expiry call: %v", err)
	}
	if counting.calls != 2 {
		t.Errorf("provider calls = %d, want 2 after expiry", counting.calls)
	}
}

func TestCachedRouteProviderDoesNotCacheFailures(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	mock := NewMockRouteProvider()
	mock.Fail(ports.ErrProviderUnavailable)
	counting := &countingProvider{inner: mock}
	cached := NewCachedRouteProvider(counting, rdb, time.Hour)

	ctx := context.Background()
	if _, err := cached.GetRoute(ctx, "A", "B", "C"); err == nil {
		t.Fatal("expected provider failure")
	}
	if mr.Exists(cacheKey("A", "B", "C")) {
		t.Error("failure was cached")
	}
}
