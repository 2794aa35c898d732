package traveltime

import (
	"context"
	"fmt"

	"layover-route-service/internal/domain"
)

// MockTravelTimeProvider returns a canned matrix for tests. When Err is set
// every call fails with it instead.
type MockTravelTimeProvider struct {
	Cells [][]float64
	Err   error

	Calls       int
	LastProfile string
}

func NewMockTravelTimeProvider(cells [][]float64) *MockTravelTimeProvider {
	return &MockTravelTimeProvider{Cells: cells}
}

func (p *MockTravelTimeProvider) TravelTimes(ctx context.Context, points []domain.Location, profile string) (domain.TravelMatrix, error) {
	p.Calls++
	p.LastProfile = profile

	if p.Err != nil {
		return domain.TravelMatrix{}, p.Err
	}
	if len(points) != len(p.Cells) {
		return domain.TravelMatrix{}, fmt.Errorf("mock has a %dx%d matrix, got %d points", len(p.Cells), len(p.Cells), len(points))
	}
	return domain.NewTravelMatrix(p.Cells)
}
