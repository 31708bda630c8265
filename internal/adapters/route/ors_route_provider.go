package route

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/xcixor/eld-route-planner/internal/domain"
	"github.com/xcixor/eld-route-planner/internal/platform/obs"
	"github.com/xcixor/eld-route-planner/internal/ports"
)

const metersPerMile = 1609.344

// ORSRouteProvider implements RouteProvider using OpenRouteService.
//
// It coordinates:
//   - Address normalization and geocoding
//   - A three-point directions call (current -> pickup -> dropoff)
//   - External API calls with retry/backoff and client-side rate limiting
//
// The provider is safe for concurrent use.
type ORSRouteProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	limiter *rate.Limiter
}

func NewORSRouteProvider(apiKey, baseURL string) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openrouteservice.org"
	}

	return &ORSRouteProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: baseURL,
		profile: "driving-hgv",
		// The free ORS tier allows 40 requests/minute.
		limiter: rate.NewLimiter(rate.Every(1500*time.Millisecond), 2),
	}, nil
}

// normalize ensures consistent keys by collapsing whitespace.
func (o *ORSRouteProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
	Units       string      `json:"units"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"segments"`
	} `json:"routes"`
}

// GetRoute geocodes the three trip points and fetches a single
// directions route through them, returning total distance and a
// per-waypoint ETA offset.
func (o *ORSRouteProvider) GetRoute(ctx context.Context, current, pickup, dropoff string) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "ors.GetRoute")(&err)

	names := []string{o.normalize(current), o.normalize(pickup), o.normalize(dropoff)}
	for _, n := range names {
		if n == "" {
			return ports.RouteResult{}, errors.New("get ORS route: all three locations must be non-empty")
		}
	}

	coords, err := o.geocodeMany(ctx, names)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("get ORS route: resolve coordinates: %w", err)
	}

	points := make([]domain.Coordinates, 0, len(names))
	for _, n := range names {
		c, ok := coords[n]
		if !ok {
			return ports.RouteResult{}, fmt.Errorf("get ORS route: missing coordinate for %q", n)
		}
		points = append(points, c)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	locations := make([][]float64, 0, len(points))
	for _, c := range points {
		locations = append(locations, c.CoordsToList())
	}
	payload, err := json.Marshal(directionsRequest{Coordinates: locations, Units: "m"})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("get ORS route: marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.RouteResult{}, classifyErr(fmt.Errorf("get ORS route: directions request: %w", err))
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("get ORS route: decode directions response: %w", err)
	}
	if len(decoded.Routes) == 0 {
		return ports.RouteResult{}, fmt.Errorf("get ORS route: %w: no route between the given points", ports.ErrProviderUnavailable)
	}

	r := decoded.Routes[0]
	if len(r.Segments) != len(names)-1 {
		return ports.RouteResult{}, fmt.Errorf(
			"get ORS route: expected %d segments, got %d", len(names)-1, len(r.Segments),
		)
	}

	waypoints := make([]ports.RouteWaypoint, 0, len(names))
	etaSeconds := 0.0
	for i, n := range names {
		if i > 0 {
			etaSeconds += r.Segments[i-1].Duration
		}
		waypoints = append(waypoints, ports.RouteWaypoint{
			Name:       n,
			Lat:        points[i].Lat,
			Lng:        points[i].Lon,
			ETASeconds: int(etaSeconds),
		})
	}

	return ports.RouteResult{
		DistanceMiles: r.Summary.Distance / metersPerMile,
		Waypoints:     waypoints,
	}, nil
}

// classifyErr maps exhausted retries onto the provider-unavailable
// sentinel so callers can distinguish external failures from bugs.
func classifyErr(err error) error {
	var he *httpStatusError
	if errors.As(err, &he) && he.Code >= 500 {
		return fmt.Errorf("%w: %v", ports.ErrProviderUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ports.ErrProviderTimeout, err)
	}
	return err
}
