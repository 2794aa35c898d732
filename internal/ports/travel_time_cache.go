package ports

import (
	"context"
	"time"
)

// Port: persistent cache of directed travel durations, scoped by travel
// profile. Keys are provider-normalized coordinate strings; values are
// minutes. Implementations must treat entries as expendable: a miss only
// costs an extra provider call.
type TravelTimeCache interface {
	// GetMany returns the cached minutes from one origin to each requested
	// destination. Missing pairs are simply absent from the result.
	GetMany(ctx context.Context, profile, origin string, destinations []string) (map[string]float64, error)

	// PutMany stores minutes from one origin to many destinations.
	PutMany(ctx context.Context, profile, origin string, minutes map[string]float64) error

	// PurgeOlderThan removes entries fetched longer than maxAge ago and
	// reports how many were dropped. Backends with native expiry may no-op.
	PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}
