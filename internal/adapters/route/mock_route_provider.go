package route

import (
	"context"
	"fmt"

	"github.com/xcixor/eld-route-planner/internal/ports"
)

// MockRouteProvider returns canned routes keyed by the three trip
// locations. Used in tests and local development without an ORS key.
type MockRouteProvider struct {
	routes map[string]ports.RouteResult
	err    error
}

func NewMockRouteProvider() *MockRouteProvider {
	return &MockRouteProvider{routes: make(map[string]ports.RouteResult)}
}

func mockKey(current, pickup, dropoff string) string {
	return current + "|" + pickup + "|" + dropoff
}

// Add registers a canned result for the given location triple.
func (m *MockRouteProvider) Add(current, pickup, dropoff string, result ports.RouteResult) {
	m.routes[mockKey(current, pickup, dropoff)] = result
}

// Fail makes every call return err instead of a result.
func (m *MockRouteProvider) Fail(err error) { m.err = err }

func (m *MockRouteProvider) GetRoute(ctx context.Context, current, pickup, dropoff string) (ports.RouteResult, error) {
	if m.err != nil {
		return ports.RouteResult{}, m.err
	}
	if err := ctx.Err(); err != nil {
		return ports.RouteResult{}, err
	}

	r, ok := m.routes[mockKey(current, pickup, dropoff)]
	if !ok {
		return ports.RouteResult{}, fmt.Errorf("missing mock route %q -> %q -> %q", current, pickup, dropoff)
	}
	return r, nil
}
