package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the tables used by the repositories and path cache.
// The statements are valid for both SQLite and Postgres.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createNetworksQuery := `
	CREATE TABLE IF NOT EXISTS networks (
		id TEXT PRIMARY KEY
	);
	`

	createIntersectionsQuery := `
	CREATE TABLE IF NOT EXISTS intersections (
		network_id TEXT NOT NULL,
		id TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (network_id, id)
	);
	`

	createSegmentsQuery := `
	CREATE TABLE IF NOT EXISTS segments (
		network_id TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		length DOUBLE PRECISION NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (network_id, origin, destination)
	);
	`

	createRequestSetsQuery := `
	CREATE TABLE IF NOT EXISTS request_sets (
		id TEXT PRIMARY KEY,
		network_id TEXT NOT NULL,
		depot_id TEXT NOT NULL,
		departure TEXT NOT NULL
	);
	`

	createRequestsQuery := `
	CREATE TABLE IF NOT EXISTS requests (
		request_set_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		pickup_id TEXT NOT NULL,
		delivery_id TEXT NOT NULL,
		pickup_duration_seconds INTEGER NOT NULL,
		delivery_duration_seconds INTEGER NOT NULL,
		PRIMARY KEY (request_set_id, seq)
	);
	`

	createToursQuery := `
	CREATE TABLE IF NOT EXISTS tours (
		id TEXT PRIMARY KEY,
		network_id TEXT NOT NULL,
		algorithm TEXT NOT NULL,
		computed_at TEXT NOT NULL,
		payload TEXT NOT NULL
	);
	`

	createPathCacheQuery := `
	CREATE TABLE IF NOT EXISTS path_cache (
		network_id TEXT NOT NULL,
		revision TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		cost DOUBLE PRECISION NOT NULL,
		segments TEXT NOT NULL,
		PRIMARY KEY (network_id, revision, origin, destination)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_segments_name
	ON segments(network_id, name);
	`

	statements := []string{
		createNetworksQuery,
		createIntersectionsQuery,
		createSegmentsQuery,
		createRequestSetsQuery,
		createRequestsQuery,
		createToursQuery,
		createPathCacheQuery,
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
