package traveltime

import (
	"context"
	"fmt"
	"math"

	"layover-route-service/internal/domain"
)

const earthRadiusKm = 6371.0

// Average speeds in km/h per travel profile, used to turn great-circle
// distance into a duration estimate.
var averageSpeedsKmh = map[string]float64{
	"driving-car":     60.0,
	"cycling-regular": 15.0,
	"foot-walking":    5.0,
}

// HaversineProvider estimates travel times from straight-line distance and an
// average speed per profile. It needs no network or API key, every pair is
// reachable, and estimates ignore the road network entirely, so it suits
// development and offline runs rather than production planning.
type HaversineProvider struct{}

func NewHaversineProvider() *HaversineProvider {
	return &HaversineProvider{}
}

func (p *HaversineProvider) TravelTimes(ctx context.Context, points []domain.Location, profile string) (domain.TravelMatrix, error) {
	if len(points) < 2 {
		return domain.TravelMatrix{}, fmt.Errorf("travel times need at least 2 points, got %d", len(points))
	}
	if err := ctx.Err(); err != nil {
		return domain.TravelMatrix{}, err
	}

	speed := averageSpeedsKmh[profile]
	if speed == 0 {
		speed = averageSpeedsKmh["driving-car"]
	}

	n := len(points)
	minutes := make([][]float64, n)
	for i := range minutes {
		minutes[i] = make([]float64, n)
		for j := range minutes[i] {
			if i == j {
				continue
			}
			km := haversineKm(points[i], points[j])
			minutes[i][j] = km / speed * 60
		}
	}
	return domain.NewTravelMatrix(minutes)
}

// haversineKm is the great-circle distance between two points in kilometers.
func haversineKm(a, b domain.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lon1 := a.Lon * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	lon2 := b.Lon * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
