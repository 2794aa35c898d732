package traveltime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"layover-route-service/internal/domain"
	"layover-route-service/internal/platform/obs"
	"layover-route-service/internal/ports"
)

// ORSTravelTimeProvider implements TravelTimeProvider using the
// OpenRouteService matrix endpoint.
//
// It coordinates:
//   - Coordinate-keyed persistent caching of pairwise travel times
//   - External API calls with retry/backoff
//   - Client-side pacing to stay inside the ORS request quota
//
// The provider is safe for concurrent use.
type ORSTravelTimeProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	limiter *rate.Limiter
	cache   ports.TravelTimeCache
}

// NewORSTravelTimeProvider builds a provider for the given API key. cache may
// be nil, in which case every call hits the remote service.
func NewORSTravelTimeProvider(apiKey string, cache ports.TravelTimeCache) (*ORSTravelTimeProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSTravelTimeProvider{
		session: &http.Client{Timeout: 10 * time.Second},
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		limiter: rate.NewLimiter(rate.Every(1500*time.Millisecond), 3),
		cache:   cache,
	}

	return provider, nil
}

// coordKey gives a location a stable cache identity. Five decimals keeps
// points within about a meter of each other on the same key.
func coordKey(l domain.Location) string {
	return fmt.Sprintf("%.5f,%.5f", l.Lat, l.Lon)
}

// TravelTimes returns the pairwise duration matrix for points, base first.
// Rows fully served by the cache skip the remote call; the rest are fetched,
// as one full-matrix call when nothing is cached or as per-origin row calls
// when only some rows are stale.
func (o *ORSTravelTimeProvider) TravelTimes(ctx context.Context, points []domain.Location, profile string) (_ domain.TravelMatrix, err error) {
	defer obs.Time(ctx, "ors.TravelTimes")(&err)

	if len(points) < 2 {
		return domain.TravelMatrix{}, fmt.Errorf("travel times need at least 2 points, got %d", len(points))
	}
	if profile == "" {
		profile = "driving-car"
	}

	n := len(points)
	keys := make([]string, n)
	for i, p := range points {
		keys[i] = coordKey(p)
	}

	minutes := make([][]float64, n)
	for i := range minutes {
		minutes[i] = make([]float64, n)
	}

	missRows, err := o.cachedRows(ctx, profile, keys, minutes)
	if err != nil {
		return domain.TravelMatrix{}, err
	}

	switch {
	case len(missRows) == 0:
		// every pair came out of the cache
	case len(missRows) == n:
		if err := o.fetchFullMatrix(ctx, points, profile, minutes); err != nil {
			return domain.TravelMatrix{}, err
		}
		o.storeRows(ctx, profile, keys, minutes, missRows)
	default:
		if err := o.fetchRows(ctx, points, profile, missRows, minutes); err != nil {
			return domain.TravelMatrix{}, err
		}
		o.storeRows(ctx, profile, keys, minutes, missRows)
	}

	return domain.NewTravelMatrix(minutes)
}

// cachedRows fills minutes from the cache and reports which origin rows still
// need the provider. A row with any missing pair is refetched whole. With no
// cache configured every row is a miss.
func (o *ORSTravelTimeProvider) cachedRows(ctx context.Context, profile string, keys []string, minutes [][]float64) ([]int, error) {
	n := len(keys)
	if o.cache == nil {
		rows := make([]int, n)
		for i := range rows {
			rows[i] = i
		}
		return rows, nil
	}

	var missRows []int
	for i, origin := range keys {
		hits, err := o.cache.GetMany(ctx, profile, origin, keys)
		if err != nil {
			return nil, fmt.Errorf("travel time cache read: %w", err)
		}
		complete := true
		for j, dest := range keys {
			if i == j {
				continue
			}
			v, ok := hits[dest]
			if !ok {
				complete = false
				break
			}
			minutes[i][j] = v
		}
		if !complete {
			missRows = append(missRows, i)
		}
	}
	return missRows, nil
}

// storeRows persists freshly fetched rows, unreachable pairs included (stored
// as +Inf). A failed write only costs future lookups, so it is logged and
// swallowed.
func (o *ORSTravelTimeProvider) storeRows(ctx context.Context, profile string, keys []string, minutes [][]float64, rows []int) {
	if o.cache == nil {
		return
	}
	for _, i := range rows {
		entry := make(map[string]float64, len(keys)-1)
		for j, dest := range keys {
			if i == j {
				continue
			}
			entry[dest] = minutes[i][j]
		}
		if err := o.cache.PutMany(ctx, profile, keys[i], entry); err != nil {
			log.Warn().Err(err).Msg("travel time cache write failed")
		}
	}
}
