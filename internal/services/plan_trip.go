package services

import (
	"context"
	"fmt"
	"math"

	"layover-route-service/internal/domain"
	"layover-route-service/internal/ports"
)

// DefaultTravelProfile is the travel profile requested when the caller does
// not name one. Providers map it to their fastest door-to-door driving mode.
const DefaultTravelProfile = "driving-car"

// PlanRequest carries everything a single planning call needs. Stops keep
// their request order; the planner decides the visiting order itself.
type PlanRequest struct {
	Base    domain.Location
	Stops   []domain.Stop
	Profile string

	// MaxSearchStops overrides the exhaustive search ceiling when positive;
	// zero means DefaultMaxSearchStops.
	MaxSearchStops int
}

// PlanTrip turns a planning request into a complete round-trip timeline:
// validate the request, fetch one travel-time matrix for base plus stops,
// search stop orderings, and realize the winner. Failures come back as
// ErrInvalidInput, ErrMatrixUnavailable or ErrNoFeasibleRoute; the context
// bounds the provider call, which is the only blocking step.
func PlanTrip(ctx context.Context, req PlanRequest, provider ports.TravelTimeProvider) (*domain.RouteTimeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: travel time provider is required", ErrInvalidInput)
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	// Nothing to visit means nothing to drive; no matrix is fetched.
	if len(req.Stops) == 0 {
		return &domain.RouteTimeline{Stops: []domain.Stop{}, Legs: []domain.Leg{}}, nil
	}

	profile := req.Profile
	if profile == "" {
		profile = DefaultTravelProfile
	}
	points := make([]domain.Location, 0, len(req.Stops)+1)
	points = append(points, req.Base)
	for _, s := range req.Stops {
		points = append(points, s.Location)
	}

	m, err := provider.TravelTimes(ctx, points, profile)
	if err != nil {
		return nil, fmt.Errorf("plan trip: %w: %w", ErrMatrixUnavailable, err)
	}
	if m.Dim() != len(req.Stops)+1 {
		return nil, fmt.Errorf("plan trip: %w: provider returned a %dx%d matrix for %d points",
			ErrMatrixUnavailable, m.Dim(), m.Dim(), len(points))
	}

	// A single stop needs no search: one out leg, one back leg, and the
	// same offset rule when its start time is fixed.
	if len(req.Stops) == 1 {
		if !m.Reachable(0, 1) || !m.Reachable(1, 0) {
			return nil, ErrNoFeasibleRoute
		}
		depart := 0.0
		if s := req.Stops[0]; s.HasFixedStart() {
			depart = float64(*s.FixedStartMin) - m.At(0, 1)
		}
		return BuildTimeline(req.Stops, []int{0}, m, depart)
	}

	order, depart, err := SequenceStops(req.Stops, m, req.MaxSearchStops)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(req.Stops, order, m, depart)
}

// validateRequest rejects malformed input before any provider traffic. The
// search ceiling is enforced here too so oversized requests fail without
// spending a matrix call.
func validateRequest(req PlanRequest) error {
	if err := validateLocation("base", req.Base); err != nil {
		return err
	}
	ceiling := req.MaxSearchStops
	if ceiling <= 0 {
		ceiling = DefaultMaxSearchStops
	}
	if len(req.Stops) > ceiling {
		return fmt.Errorf("%w: %d stops exceed the search ceiling of %d", ErrInvalidInput, len(req.Stops), ceiling)
	}
	for i, s := range req.Stops {
		if s.Name == "" {
			return fmt.Errorf("%w: stop %d has no name", ErrInvalidInput, i)
		}
		if err := validateLocation(fmt.Sprintf("stop %d (%s)", i, s.Name), s.Location); err != nil {
			return err
		}
		if s.ServiceMinutes < 0 {
			return fmt.Errorf("%w: stop %d (%s) has negative service duration %d",
				ErrInvalidInput, i, s.Name, s.ServiceMinutes)
		}
		if s.HasFixedStart() {
			if v := *s.FixedStartMin; v < 0 || v >= domain.MinutesPerDay {
				return fmt.Errorf("%w: stop %d (%s) has fixed start %d outside [0,%d)",
					ErrInvalidInput, i, s.Name, v, domain.MinutesPerDay)
			}
		}
	}
	return nil
}

func validateLocation(what string, l domain.Location) error {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lon) || l.Lat < -90 || l.Lat > 90 || l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("%w: %s has coordinates (%v, %v) outside valid range", ErrInvalidInput, what, l.Lat, l.Lon)
	}
	return nil
}
