package services

import "errors"

// Failure taxonomy of the planning boundary. All three kinds are recoverable
// at the call site and matched with errors.Is; none is fatal to the process.
// A failed planning call never carries a partial timeline.
var (
	// ErrInvalidInput rejects a malformed request (negative durations,
	// fixed times outside the day, too many stops for exhaustive search)
	// before any provider call or search begins.
	ErrInvalidInput = errors.New("invalid planning input")

	// ErrMatrixUnavailable wraps a travel-time provider failure, timeouts
	// included. The cause is propagated unchanged and never retried here.
	ErrMatrixUnavailable = errors.New("travel time matrix unavailable")

	// ErrNoFeasibleRoute means the search completed and no stop ordering
	// satisfies every fixed start time over reachable legs. This is a normal
	// outcome, deliberately distinct from provider failure so callers can
	// offer a relaxed or manual plan instead.
	ErrNoFeasibleRoute = errors.New("no feasible route")
)
