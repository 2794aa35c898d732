package cache

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSqliteSchema creates the travel time cache table on a SQLite handle.
// fetched_at is unix seconds so the purge sweep can compare integers.
func InitSqliteSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
        profile TEXT NOT NULL,
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        minutes REAL NOT NULL,
        fetched_at INTEGER NOT NULL,
        PRIMARY KEY (profile, origin, destination)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_travel_time_cache_fetched_at
    ON travel_time_cache(fetched_at);
	`

	statements := []string{
		createCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// InitPostgresSchema creates the travel time cache table on postgres.
func InitPostgresSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCacheQuery := `
	CREATE TABLE IF NOT EXISTS travel_time_cache (
        profile TEXT NOT NULL,
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        minutes DOUBLE PRECISION NOT NULL,
        fetched_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (profile, origin, destination)
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_travel_time_cache_fetched_at
    ON travel_time_cache(fetched_at);
	`

	statements := []string{
		createCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
