package services

import (
	"fmt"

	"layover-route-service/internal/domain"
)

// BuildTimeline realizes an already-chosen visiting order as a concrete
// timeline: base, each stop in order, base again, with one leg per hop read
// straight from the matrix. It is deterministic and does no searching, so the
// same inputs always produce the same timeline.
//
// order must be a permutation of stop indices and every leg it implies must
// be reachable; violations are programming errors on the caller's side and
// come back as plain errors, not planning failures.
func BuildTimeline(stops []domain.Stop, order []int, m domain.TravelMatrix, departMin float64) (*domain.RouteTimeline, error) {
	n := len(stops)
	if m.Dim() != n+1 {
		return nil, fmt.Errorf("build timeline: matrix is %dx%d, want %dx%d for %d stops",
			m.Dim(), m.Dim(), n+1, n+1, n)
	}
	if len(order) != n {
		return nil, fmt.Errorf("build timeline: order has %d entries for %d stops", len(order), n)
	}

	seen := make([]bool, n)
	ordered := make([]domain.Stop, 0, n)
	legs := make([]domain.Leg, 0, n+1)
	prev := 0
	for _, si := range order {
		if si < 0 || si >= n {
			return nil, fmt.Errorf("build timeline: stop index %d out of range", si)
		}
		if seen[si] {
			return nil, fmt.Errorf("build timeline: stop index %d repeated", si)
		}
		seen[si] = true
		node := si + 1
		leg := m.At(prev, node)
		if domain.IsUnreachable(leg) {
			return nil, fmt.Errorf("build timeline: leg %d->%d is unreachable", prev, node)
		}
		legs = append(legs, domain.Leg{From: prev, To: node, Minutes: leg})
		ordered = append(ordered, stops[si])
		prev = node
	}
	if n > 0 {
		back := m.At(prev, 0)
		if domain.IsUnreachable(back) {
			return nil, fmt.Errorf("build timeline: leg %d->0 is unreachable", prev)
		}
		legs = append(legs, domain.Leg{From: prev, To: 0, Minutes: back})
	}

	return &domain.RouteTimeline{Stops: ordered, Legs: legs, DepartureMin: departMin}, nil
}
