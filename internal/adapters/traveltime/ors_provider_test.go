package traveltime

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"layover-route-service/internal/domain"
)

var testPoints = []domain.Location{
	{Lat: 50.05, Lon: 8.57},
	{Lat: 50.11, Lon: 8.68},
	{Lat: 50.10, Lon: 8.66},
}

// testSeconds feeds the fake matrix endpoint; negative cells become null in
// the response, which is how ORS reports unroutable pairs.
var testSeconds = [][]float64{
	{0, 600, 900},
	{660, 0, -1},
	{960, 840, 0},
}

type stubTravelCache struct {
	mu   sync.Mutex
	rows map[string]map[string]float64
	puts int
}

func newStubTravelCache() *stubTravelCache {
	return &stubTravelCache{rows: map[string]map[string]float64{}}
}

func (s *stubTravelCache) load(profile, origin string, row map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[profile+"|"+origin] = row
}

func (s *stubTravelCache) GetMany(ctx context.Context, profile, origin string, destinations []string) (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.rows[profile+"|"+origin]
	out := make(map[string]float64)
	for _, d := range destinations {
		if v, ok := row[d]; ok {
			out[d] = v
		}
	}
	return out, nil
}

func (s *stubTravelCache) PutMany(ctx context.Context, profile, origin string, minutes map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := make(map[string]float64, len(minutes))
	for k, v := range minutes {
		row[k] = v
	}
	s.rows[profile+"|"+origin] = row
	s.puts++
	return nil
}

func (s *stubTravelCache) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	return 0, nil
}

// matrixServer fakes the ORS matrix endpoint from testSeconds, serving the
// full table when no sources are given and a single row otherwise.
func matrixServer(t *testing.T, requests *[]matrixRequest) *httptest.Server {
	t.Helper()
	var mu sync.Mutex

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req matrixRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		*requests = append(*requests, req)
		mu.Unlock()

		cell := func(i, j int) *float64 {
			v := testSeconds[i][j]
			if v < 0 {
				return nil
			}
			return &v
		}

		var durations [][]*float64
		if len(req.Sources) == 0 {
			for i := range testSeconds {
				row := make([]*float64, len(testSeconds))
				for j := range testSeconds {
					row[j] = cell(i, j)
				}
				durations = append(durations, row)
			}
		} else {
			i := req.Sources[0]
			row := make([]*float64, len(testSeconds))
			for j := range testSeconds {
				row[j] = cell(i, j)
			}
			durations = [][]*float64{row}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(matrixResponse{Durations: durations})
	}))
}

func newTestProvider(t *testing.T, url string, cache *stubTravelCache) *ORSTravelTimeProvider {
	t.Helper()

	var provider *ORSTravelTimeProvider
	var err error
	if cache == nil {
		provider, err = NewORSTravelTimeProvider("test-key", nil)
	} else {
		provider, err = NewORSTravelTimeProvider("test-key", cache)
	}
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	provider.baseURL = url
	return provider
}

func TestORSTravelTimesFullMatrix(t *testing.T) {
	var requests []matrixRequest
	srv := matrixServer(t, &requests)
	defer srv.Close()

	provider := newTestProvider(t, srv.URL, nil)
	m, err := provider.TravelTimes(context.Background(), testPoints, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 1 {
		t.Fatalf("expected 1 matrix call, got %d", len(requests))
	}
	req := requests[0]
	if len(req.Locations) != 3 || len(req.Sources) != 0 {
		t.Fatalf("expected a full 3-point request, got %+v", req)
	}
	if req.Locations[0][0] != 8.57 || req.Locations[0][1] != 50.05 {
		t.Fatalf("locations must be lon,lat ordered, got %v", req.Locations[0])
	}
	if len(req.Metrics) != 1 || req.Metrics[0] != "duration" {
		t.Fatalf("metrics = %v, want [duration]", req.Metrics)
	}

	if got := m.At(0, 1); got != 10 {
		t.Fatalf("minutes(0,1) = %v, want 10", got)
	}
	if got := m.At(2, 1); got != 14 {
		t.Fatalf("minutes(2,1) = %v, want 14", got)
	}
	if !domain.IsUnreachable(m.At(1, 2)) {
		t.Fatalf("null duration must map to unreachable, got %v", m.At(1, 2))
	}
}

func TestORSTravelTimesRetriesServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		row := make([]*float64, 2)
		secs := []float64{0, 600}
		row[0], row[1] = &secs[0], &secs[1]
		allZero := []*float64{&secs[0], &secs[0]}
		json.NewEncoder(w).Encode(matrixResponse{Durations: [][]*float64{row, allZero}})
	}))
	defer srv.Close()

	provider := newTestProvider(t, srv.URL, nil)
	two := testPoints[:2]
	m, err := provider.TravelTimes(context.Background(), two, "driving-car")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
	if got := m.At(0, 1); got != 10 {
		t.Fatalf("minutes(0,1) = %v, want 10", got)
	}
}

func TestORSTravelTimesServedEntirelyFromCache(t *testing.T) {
	var requests []matrixRequest
	srv := matrixServer(t, &requests)
	defer srv.Close()

	keys := make([]string, len(testPoints))
	for i, p := range testPoints {
		keys[i] = coordKey(p)
	}

	cache := newStubTravelCache()
	cache.load("driving-car", keys[0], map[string]float64{keys[1]: 11, keys[2]: 16})
	cache.load("driving-car", keys[1], map[string]float64{keys[0]: 12, keys[2]: 13})
	cache.load("driving-car", keys[2], map[string]float64{keys[0]: 17, keys[1]: 14})

	provider := newTestProvider(t, srv.URL, cache)
	m, err := provider.TravelTimes(context.Background(), testPoints, "driving-car")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 0 {
		t.Fatalf("cache-complete lookup still made %d remote calls", len(requests))
	}
	if got := m.At(0, 2); got != 16 {
		t.Fatalf("minutes(0,2) = %v, want the cached 16", got)
	}
	if got := m.At(1, 1); got != 0 {
		t.Fatalf("diagonal = %v, want 0", got)
	}
}

func TestORSTravelTimesFetchesOnlyMissingRows(t *testing.T) {
	var requests []matrixRequest
	srv := matrixServer(t, &requests)
	defer srv.Close()

	keys := make([]string, len(testPoints))
	for i, p := range testPoints {
		keys[i] = coordKey(p)
	}

	cache := newStubTravelCache()
	cache.load("driving-car", keys[0], map[string]float64{keys[1]: 11, keys[2]: 16})

	provider := newTestProvider(t, srv.URL, cache)
	m, err := provider.TravelTimes(context.Background(), testPoints, "driving-car")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 row calls, got %d", len(requests))
	}
	sources := map[int]bool{}
	for _, r := range requests {
		if len(r.Sources) != 1 {
			t.Fatalf("expected single-source row requests, got %+v", r)
		}
		sources[r.Sources[0]] = true
	}
	if !sources[1] || !sources[2] {
		t.Fatalf("expected rows 1 and 2 to be fetched, got %v", sources)
	}

	if got := m.At(0, 1); got != 11 {
		t.Fatalf("minutes(0,1) = %v, want the cached 11", got)
	}
	if got := m.At(1, 0); got != 11 {
		t.Fatalf("minutes(1,0) = %v, want the fetched 11", got)
	}
	if !domain.IsUnreachable(m.At(1, 2)) {
		t.Fatalf("null duration must map to unreachable, got %v", m.At(1, 2))
	}

	cache.mu.Lock()
	puts := cache.puts
	storedRow := cache.rows["driving-car|"+keys[1]]
	cache.mu.Unlock()
	if puts != 2 {
		t.Fatalf("expected 2 cache writes, got %d", puts)
	}
	if !math.IsInf(storedRow[keys[2]], 1) {
		t.Fatalf("unreachable pair stored as %v, want +Inf", storedRow[keys[2]])
	}
}

func TestORSTravelTimesInputGuards(t *testing.T) {
	provider := newTestProvider(t, "http://unused.invalid", nil)

	if _, err := provider.TravelTimes(context.Background(), testPoints[:1], "driving-car"); err == nil {
		t.Fatal("expected error for fewer than 2 points")
	}

	if _, err := NewORSTravelTimeProvider("", nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
