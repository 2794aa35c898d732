package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTravelTimeCache keeps pairwise travel times in redis with a TTL per
// entry, so redis retires stale values itself. Minutes are stored as
// formatted floats; +Inf marks unreachable pairs.
type RedisTravelTimeCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisTravelTimeCache(client *redis.Client, ttl time.Duration) *RedisTravelTimeCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisTravelTimeCache{Client: client, TTL: ttl}
}

func travelKey(profile, origin, destination string) string {
	return fmt.Sprintf("tt:%s:%s:%s", profile, origin, destination)
}

// Fetch cached travel times from one origin to multiple destinations.
func (s *RedisTravelTimeCache) GetMany(
	ctx context.Context,
	profile string,
	origin string,
	destinations []string,
) (map[string]float64, error) {
	if s.Client == nil {
		return nil, errors.New("travel time cache: redis client is nil")
	}

	if profile == "" || origin == "" {
		return nil, errors.New("get travel time cache: profile and origin must not be empty")
	}

	if len(destinations) == 0 {
		return map[string]float64{}, nil
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(destinations))
	keys := make([]string, 0, len(destinations))
	for _, d := range destinations {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}

		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
		keys = append(keys, travelKey(profile, origin, d))
	}

	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	vals, err := s.Client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: mget: %w", err)
	}

	out := make(map[string]float64, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		minutes, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("get travel time cache: parse value %q: %w", raw, err)
		}
		out[uniq[i]] = minutes
	}

	return out, nil
}

// Store travel times from a single origin. Each entry gets a fresh TTL.
func (s *RedisTravelTimeCache) PutMany(
	ctx context.Context,
	profile string,
	origin string,
	minutes map[string]float64,
) error {
	if s.Client == nil {
		return errors.New("travel time cache: redis client is nil")
	}

	if profile == "" || origin == "" {
		return errors.New("insert travel time cache: profile and origin must not be empty")
	}

	if len(minutes) == 0 {
		return nil
	}

	pipe := s.Client.Pipeline()
	for dest, m := range minutes {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert travel time cache: empty destination key")
		}
		pipe.Set(ctx, travelKey(profile, origin, dest), strconv.FormatFloat(m, 'f', -1, 64), s.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert travel time cache: pipeline exec: %w", err)
	}

	return nil
}

// PurgeOlderThan is a no-op on redis, which expires entries via their TTL.
func (s *RedisTravelTimeCache) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	return 0, nil
}
