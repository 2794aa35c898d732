package services

import (
	"context"
	"errors"
	"testing"

	"layover-route-service/internal/adapters/traveltime"
	"layover-route-service/internal/domain"
	"layover-route-service/internal/ports"
)

type fixedMatrixProvider struct{ m domain.TravelMatrix }

func (p fixedMatrixProvider) TravelTimes(ctx context.Context, points []domain.Location, profile string) (domain.TravelMatrix, error) {
	return p.m, nil
}

func TestPlanTripSingleStop(t *testing.T) {
	provider := traveltime.NewMockTravelTimeProvider([][]float64{
		{0, 20},
		{25, 0},
	})
	req := PlanRequest{
		Base:  domain.Location{Lat: 52.31, Lon: 4.76},
		Stops: []domain.Stop{{Name: "B", Location: domain.Location{Lat: 52.37, Lon: 4.89}, ServiceMinutes: 30}},
	}

	tl, err := PlanTrip(context.Background(), req, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tl.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(tl.Legs))
	}
	if got := tl.DrivingMinutes(); got != 45 {
		t.Fatalf("driving minutes = %v, want 45", got)
	}
	if got := tl.ServiceMinutes(); got != 30 {
		t.Fatalf("service minutes = %v, want 30", got)
	}
	if got := tl.TotalMinutes(); got != 75 {
		t.Fatalf("total minutes = %v, want 75", got)
	}
	if tl.DepartureMin != 0 {
		t.Fatalf("departure = %v, want 0 with no fixed time", tl.DepartureMin)
	}
	if provider.LastProfile != DefaultTravelProfile {
		t.Fatalf("profile = %q, want %q", provider.LastProfile, DefaultTravelProfile)
	}
}

func TestPlanTripSingleStopFixedStart(t *testing.T) {
	provider := traveltime.NewMockTravelTimeProvider([][]float64{
		{0, 20},
		{25, 0},
	})
	req := PlanRequest{
		Base: domain.Location{Lat: 52.31, Lon: 4.76},
		Stops: []domain.Stop{{
			Name:           "meeting",
			Location:       domain.Location{Lat: 52.37, Lon: 4.89},
			ServiceMinutes: 45,
			FixedStartMin:  fixedAt(600),
		}},
	}

	tl, err := PlanTrip(context.Background(), req, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tl.DepartureMin != 580 {
		t.Fatalf("departure = %v, want 580 to arrive at 600", tl.DepartureMin)
	}
	visits := tl.Visits()
	if visits[0].ArriveMin != 600 || visits[0].LeaveMin != 645 {
		t.Fatalf("visit: arrive=%v leave=%v, want 600 and 645", visits[0].ArriveMin, visits[0].LeaveMin)
	}
}

func TestPlanTripTwoStops(t *testing.T) {
	provider := traveltime.NewMockTravelTimeProvider([][]float64{
		{0, 10, 15},
		{10, 0, 12},
		{16, 14, 0},
	})
	req := PlanRequest{
		Base: domain.Location{Lat: 50.05, Lon: 8.57},
		Stops: []domain.Stop{
			{Name: "X", Location: domain.Location{Lat: 50.11, Lon: 8.68}, ServiceMinutes: 30, FixedStartMin: fixedAt(600)},
			{Name: "Y", Location: domain.Location{Lat: 50.10, Lon: 8.66}, ServiceMinutes: 20},
		},
		Profile: "foot-walking",
	}

	tl, err := PlanTrip(context.Background(), req, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tl.Stops[0].Name != "X" || tl.Stops[1].Name != "Y" {
		t.Fatalf("expected X then Y, got %q then %q", tl.Stops[0].Name, tl.Stops[1].Name)
	}
	if tl.DepartureMin != 590 {
		t.Fatalf("departure = %v, want 590", tl.DepartureMin)
	}
	if got := tl.DrivingMinutes(); got != 38 {
		t.Fatalf("driving minutes = %v, want 38", got)
	}
	if got := tl.ReturnMin(); got != 678 {
		t.Fatalf("return = %v, want 678", got)
	}
	if provider.LastProfile != "foot-walking" {
		t.Fatalf("profile = %q, want foot-walking", provider.LastProfile)
	}
}

func TestPlanTripNoStops(t *testing.T) {
	provider := traveltime.NewMockTravelTimeProvider(nil)
	req := PlanRequest{Base: domain.Location{Lat: 1, Lon: 1}}

	tl, err := PlanTrip(context.Background(), req, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tl.Stops) != 0 || len(tl.Legs) != 0 {
		t.Fatalf("expected empty timeline, got %d stops and %d legs", len(tl.Stops), len(tl.Legs))
	}
	if provider.Calls != 0 {
		t.Fatalf("provider called %d times for an empty trip", provider.Calls)
	}
}

func TestPlanTripProviderFailure(t *testing.T) {
	provider := traveltime.NewMockTravelTimeProvider(nil)
	provider.Err = errors.New("connect: network unreachable")
	req := PlanRequest{
		Base:  domain.Location{Lat: 1, Lon: 1},
		Stops: []domain.Stop{{Name: "B", Location: domain.Location{Lat: 2, Lon: 2}}},
	}

	_, err := PlanTrip(context.Background(), req, provider)
	if !errors.Is(err, ErrMatrixUnavailable) {
		t.Fatalf("expected ErrMatrixUnavailable, got %v", err)
	}
	if errors.Is(err, ErrNoFeasibleRoute) {
		t.Fatal("provider failure must not look like an infeasible route")
	}
}

func TestPlanTripInvalidInput(t *testing.T) {
	provider := traveltime.NewMockTravelTimeProvider(nil)
	base := domain.Location{Lat: 1, Lon: 1}
	loc := domain.Location{Lat: 2, Lon: 2}

	cases := []struct {
		name string
		req  PlanRequest
	}{
		{"negative service", PlanRequest{Base: base, Stops: []domain.Stop{{Name: "a", Location: loc, ServiceMinutes: -5}}}},
		{"fixed start past midnight", PlanRequest{Base: base, Stops: []domain.Stop{{Name: "a", Location: loc, FixedStartMin: fixedAt(1440)}}}},
		{"negative fixed start", PlanRequest{Base: base, Stops: []domain.Stop{{Name: "a", Location: loc, FixedStartMin: fixedAt(-10)}}}},
		{"unnamed stop", PlanRequest{Base: base, Stops: []domain.Stop{{Location: loc}}}},
		{"latitude out of range", PlanRequest{Base: base, Stops: []domain.Stop{{Name: "a", Location: domain.Location{Lat: 95, Lon: 2}}}}},
		{"too many stops", PlanRequest{Base: base, Stops: []domain.Stop{
			{Name: "a", Location: loc}, {Name: "b", Location: loc}, {Name: "c", Location: loc},
		}, MaxSearchStops: 2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PlanTrip(context.Background(), tc.req, provider)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
	if provider.Calls != 0 {
		t.Fatalf("provider called %d times for invalid requests", provider.Calls)
	}
}

func TestPlanTripUnreachableSingleStop(t *testing.T) {
	provider := traveltime.NewMockTravelTimeProvider([][]float64{
		{0, domain.Unreachable()},
		{25, 0},
	})
	req := PlanRequest{
		Base:  domain.Location{Lat: 1, Lon: 1},
		Stops: []domain.Stop{{Name: "island", Location: domain.Location{Lat: 2, Lon: 2}}},
	}

	_, err := PlanTrip(context.Background(), req, provider)
	if !errors.Is(err, ErrNoFeasibleRoute) {
		t.Fatalf("expected ErrNoFeasibleRoute, got %v", err)
	}
}

func TestPlanTripMisshapenProviderMatrix(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0, 1}, {1, 0}})
	var provider ports.TravelTimeProvider = fixedMatrixProvider{m: m}
	req := PlanRequest{
		Base: domain.Location{Lat: 1, Lon: 1},
		Stops: []domain.Stop{
			{Name: "a", Location: domain.Location{Lat: 2, Lon: 2}},
			{Name: "b", Location: domain.Location{Lat: 3, Lon: 3}},
		},
	}

	_, err := PlanTrip(context.Background(), req, provider)
	if !errors.Is(err, ErrMatrixUnavailable) {
		t.Fatalf("expected ErrMatrixUnavailable for a 2x2 matrix with 3 points, got %v", err)
	}
}

func TestPlanTripSingleStopMatchesBuilder(t *testing.T) {
	cells := [][]float64{
		{0, 20},
		{25, 0},
	}
	provider := traveltime.NewMockTravelTimeProvider(cells)
	stops := []domain.Stop{{Name: "B", Location: domain.Location{Lat: 2, Lon: 2}, ServiceMinutes: 30}}

	planned, err := PlanTrip(context.Background(), PlanRequest{Base: domain.Location{Lat: 1, Lon: 1}, Stops: stops}, provider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	direct, err := BuildTimeline(stops, []int{0}, mustMatrix(t, cells), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if planned.DrivingMinutes() != direct.DrivingMinutes() ||
		planned.TotalMinutes() != direct.TotalMinutes() ||
		planned.DepartureMin != direct.DepartureMin {
		t.Fatalf("planner and builder disagree: %+v vs %+v", planned, direct)
	}
}
