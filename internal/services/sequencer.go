package services

import (
	"fmt"

	"layover-route-service/internal/domain"
)

// DefaultMaxSearchStops caps the exhaustive search when the caller does not
// override it. Factorial growth makes 8 stops (40320 orderings) the largest
// size that stays comfortably interactive.
const DefaultMaxSearchStops = 8

// feasibilityEps absorbs float drift when an arrival computed from a derived
// departure offset lands exactly on a fixed start time.
const feasibilityEps = 1e-9

// SequenceStops tries every ordering of stops and returns the one that admits
// a feasible base departure and, among feasible orderings, spends the least
// total time driving (all legs, return to base included). Service durations
// and waiting never enter the cost.
//
// The matrix must be (len(stops)+1) square with the base at index 0 and
// stops[i] at index i+1. The returned order holds indices into stops; the
// returned departure is the minute offset from the base at which the traveler
// should leave so every fixed start time is met exactly where it binds.
// Orderings tied on cost resolve to the first one enumerated, so results are
// reproducible across runs for identical input.
//
// Every permutation is simulated once, O(n!*n) overall. maxStops bounds n
// (zero means DefaultMaxSearchStops); larger inputs are rejected with
// ErrInvalidInput rather than searched.
func SequenceStops(stops []domain.Stop, m domain.TravelMatrix, maxStops int) ([]int, float64, error) {
	n := len(stops)
	if maxStops <= 0 {
		maxStops = DefaultMaxSearchStops
	}
	if n < 2 {
		return nil, 0, fmt.Errorf("%w: sequencing needs at least 2 stops, got %d", ErrInvalidInput, n)
	}
	if n > maxStops {
		return nil, 0, fmt.Errorf("%w: %d stops exceed the search ceiling of %d", ErrInvalidInput, n, maxStops)
	}
	if m.Dim() != n+1 {
		return nil, 0, fmt.Errorf("%w: matrix is %dx%d, want %dx%d for %d stops",
			ErrInvalidInput, m.Dim(), m.Dim(), n+1, n+1, n)
	}

	var (
		best       []int
		bestCost   float64
		bestDepart float64
		found      bool
	)
	forEachPermutation(n, func(order []int) {
		depart, cost, ok := evaluateOrder(stops, m, order)
		if !ok {
			return
		}
		if !found || cost < bestCost {
			found = true
			bestCost = cost
			bestDepart = depart
			best = append(best[:0], order...)
		}
	})
	if !found {
		return nil, 0, ErrNoFeasibleRoute
	}
	return best, bestDepart, nil
}

// evaluateOrder simulates one candidate ordering. The first pass walks the
// route from a zero departure assuming no waiting anywhere, accumulating
// driving cost and, at every stop with a fixed start, the base offset that
// would land the traveler there exactly on time. The tightest (smallest)
// offset wins; with no fixed stops the traveler leaves at minute 0.
//
// The second pass re-simulates from that offset with real clock semantics:
// a fixed commitment begins at its scheduled minute, so arriving early means
// waiting there until it starts. The ordering is rejected if any fixed stop
// is reached after its scheduled time, which is how two fixed commitments
// too far apart for their schedule gap rule each other out.
//
// Any unreachable leg, the return to base included, makes the ordering
// infeasible before offsets are considered.
func evaluateOrder(stops []domain.Stop, m domain.TravelMatrix, order []int) (departMin, cost float64, ok bool) {
	var (
		prev     int
		elapsed  float64
		hasFixed bool
	)
	for _, si := range order {
		node := si + 1
		leg := m.At(prev, node)
		if domain.IsUnreachable(leg) {
			return 0, 0, false
		}
		cost += leg
		elapsed += leg
		s := stops[si]
		if s.HasFixedStart() {
			offset := float64(*s.FixedStartMin) - elapsed
			if !hasFixed || offset < departMin {
				departMin = offset
				hasFixed = true
			}
		}
		elapsed += float64(s.ServiceMinutes)
		prev = node
	}
	back := m.At(prev, 0)
	if domain.IsUnreachable(back) {
		return 0, 0, false
	}
	cost += back
	if !hasFixed {
		departMin = 0
	}

	clock := departMin
	prev = 0
	for _, si := range order {
		node := si + 1
		clock += m.At(prev, node)
		s := stops[si]
		if s.HasFixedStart() {
			fixed := float64(*s.FixedStartMin)
			if clock > fixed+feasibilityEps {
				return 0, 0, false
			}
			if clock < fixed {
				clock = fixed
			}
		}
		clock += float64(s.ServiceMinutes)
		prev = node
	}
	return departMin, cost, true
}

// forEachPermutation feeds every permutation of [0..n) to visit, one at a
// time, using the iterative form of Heap's algorithm. The working slice is
// reused between calls, so visit must copy it to retain one. Enumeration
// starts from the identity order and is stable for a given n.
func forEachPermutation(n int, visit func(order []int)) {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	c := make([]int, n)
	visit(order)
	i := 0
	for i < n {
		if c[i] < i {
			if i%2 == 0 {
				order[0], order[i] = order[i], order[0]
			} else {
				order[c[i]], order[i] = order[i], order[c[i]]
			}
			visit(order)
			c[i]++
			i = 0
		} else {
			c[i] = 0
			i++
		}
	}
}
