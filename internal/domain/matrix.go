package domain

import (
	"fmt"
	"math"
)

// Unreachable marks a pair the travel-time provider could not route between.
// Providers must map "no route" responses to this sentinel, never to zero.
func Unreachable() float64 { return math.Inf(1) }

// IsUnreachable reports whether a matrix entry is the unreachable sentinel.
func IsUnreachable(minutes float64) bool { return math.IsInf(minutes, 1) }

// TravelMatrix is a square, directed table of travel durations in minutes.
// Node 0 is always the base location; nodes 1..N are the stops in the order
// the caller supplied them. Entries are finite non-negative minutes or the
// Unreachable sentinel. The matrix is immutable once built.
type TravelMatrix struct {
	minutes [][]float64
}

// NewTravelMatrix validates cells and wraps them in a TravelMatrix.
// The table must be square with at least one row (the base), and every entry
// must be a non-negative finite duration or Unreachable.
func NewTravelMatrix(cells [][]float64) (TravelMatrix, error) {
	n := len(cells)
	if n == 0 {
		return TravelMatrix{}, fmt.Errorf("travel matrix: no rows")
	}
	for i, row := range cells {
		if len(row) != n {
			return TravelMatrix{}, fmt.Errorf("travel matrix: row %d has %d entries, want %d", i, len(row), n)
		}
		for j, v := range row {
			// NaN compares false against everything, so it needs its own
			// check; negative infinity is caught by v < 0.
			if math.IsNaN(v) || v < 0 {
				return TravelMatrix{}, fmt.Errorf("travel matrix: entry [%d][%d]=%v is not a valid duration", i, j, v)
			}
		}
	}
	return TravelMatrix{minutes: cells}, nil
}

// Dim returns the node count (stops + 1 for the base).
func (m TravelMatrix) Dim() int { return len(m.minutes) }

// StopCount returns the number of stop nodes (Dim minus the base).
func (m TravelMatrix) StopCount() int {
	if len(m.minutes) == 0 {
		return 0
	}
	return len(m.minutes) - 1
}

// At returns the directed duration in minutes from node i to node j.
func (m TravelMatrix) At(i, j int) float64 { return m.minutes[i][j] }

// Reachable reports whether the provider found a route from node i to node j.
func (m TravelMatrix) Reachable(i, j int) bool { return !IsUnreachable(m.minutes[i][j]) }
