package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLite backed cache of pairwise travel times per profile. Origin and
// destination keys are coordinate strings produced by the provider and are
// treated as opaque here. Unreachable pairs round-trip as +Inf minutes.
type SqliteTravelTimeCache struct {
	DB *sql.DB
}

func NewSqliteTravelTimeCache(db *sql.DB) *SqliteTravelTimeCache {
	return &SqliteTravelTimeCache{DB: db}
}

// Fetch cached travel times from one origin to multiple destinations.
func (s *SqliteTravelTimeCache) GetMany(
	ctx context.Context,
	profile string,
	origin string,
	destinations []string,
) (map[string]float64, error) {
	if s.DB == nil {
		return nil, errors.New("travel time cache: db is nil")
	}

	if profile == "" || origin == "" {
		return nil, errors.New("get travel time cache: profile and origin must not be empty")
	}

	if len(destinations) == 0 {
		return map[string]float64{}, nil
	}

	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(destinations))
	ph := make([]string, 0, len(destinations))
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
		ph = append(ph, "?")
	}

	if len(uniq) == 0 {
		return map[string]float64{}, nil
	}

	placeholders := strings.Join(ph, ",")
	args := make([]any, 0, 2+len(uniq))
	args = append(args, profile, origin)
	for _, d := range uniq {
		args = append(args, d)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT destination, minutes
    FROM travel_time_cache
    WHERE profile = ?
        AND origin = ?
        AND destination IN (%s);
	`, placeholders)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: query travel_time_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64, len(uniq))
	for rows.Next() {
		var dest string
		var minutes float64
		if err := rows.Scan(&dest, &minutes); err != nil {
			return nil, fmt.Errorf("get travel time cache: scan rows: %w", err)
		}
		out[dest] = minutes
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get travel time cache: row iteration: %w", err)
	}

	return out, nil
}

// Store travel times from a single origin, refreshing fetched_at on rewrite.
func (s *SqliteTravelTimeCache) PutMany(
	ctx context.Context,
	profile string,
	origin string,
	minutes map[string]float64,
) error {
	if s.DB == nil {
		return errors.New("travel time cache: db is nil")
	}

	if profile == "" || origin == "" {
		return errors.New("insert travel time cache: profile and origin must not be empty")
	}

	if len(minutes) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT OR REPLACE INTO travel_time_cache (
        profile,
        origin,
        destination,
        minutes,
        fetched_at
    )
    VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for dest, m := range minutes {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert travel time cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, profile, origin, dest, m, now); err != nil {
			return fmt.Errorf("insert travel time cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert travel time cache commit: %w", err)
	}

	return nil
}

// PurgeOlderThan deletes rows fetched more than maxAge ago and reports how
// many went away.
func (s *SqliteTravelTimeCache) PurgeOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	if s.DB == nil {
		return 0, errors.New("travel time cache: db is nil")
	}
	if maxAge <= 0 {
		return 0, errors.New("purge travel time cache: maxAge must be positive")
	}

	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := s.DB.ExecContext(ctx, `DELETE FROM travel_time_cache WHERE fetched_at < ?;`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge travel time cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge travel time cache: rows affected: %w", err)
	}
	return n, nil
}
