package ports

import (
	"context"
	"layover-route-service/internal/domain"
)

// Contract for fetching pairwise travel durations from an external service.
type TravelTimeProvider interface {
	// TravelTimes returns the directed duration matrix between every pair of
	// points (base first, stops after) for the given travel profile. Pairs the
	// service cannot route between come back as domain.Unreachable, never as
	// zero. At least two points are required; fewer is a usage error.
	TravelTimes(ctx context.Context, points []domain.Location, profile string) (domain.TravelMatrix, error)
}
