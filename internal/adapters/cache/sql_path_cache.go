package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/platform/db"
	"tour-planner-service/internal/platform/obs"
	"tour-planner-service/internal/ports"
)

// SQLPathCache is a SQL-backed cache of shortest paths keyed by
// (network, revision, origin, destination).
type SQLPathCache struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLPathCache(sqlDB *sql.DB, dialect db.Dialect) *SQLPathCache {
	return &SQLPathCache{DB: sqlDB, Dialect: dialect}
}

// Fetch cached paths for one origin and multiple destinations.
func (s *SQLPathCache) GetPaths(
	ctx context.Context,
	scope ports.PathScope,
	origin string,
	destinations []string,
) (_ map[string]domain.Path, err error) {
	defer obs.Time(ctx, "path.cache.GetPaths")(&err)

	if s.DB == nil {
		return nil, errors.New("path cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get path cache: origin must not be empty")
	}

	uniq := uniqueIDs(destinations)
	if len(uniq) == 0 {
		return map[string]domain.Path{}, nil
	}

	ph := make([]string, len(uniq))
	args := make([]any, 0, 3+len(uniq))
	args = append(args, scope.NetworkID, scope.Revision, origin)
	for i, d := range uniq {
		ph[i] = "?"
		args = append(args, d)
	}

	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
		destination,
		cost,
		segments
	FROM path_cache
	WHERE network_id = ?
		AND revision = ?
		AND origin = ?
		AND destination IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, s.Dialect.Rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("get path cache: query path_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Path, len(uniq))
	for rows.Next() {
		var dest, segs string
		var cost float64
		if err := rows.Scan(&dest, &cost, &segs); err != nil {
			return nil, fmt.Errorf("get path cache: scan rows: %w", err)
		}
		segments, err := decodeSegments([]byte(segs))
		if err != nil {
			return nil, fmt.Errorf("get path cache: decode %q->%q: %w", origin, dest, err)
		}
		out[dest] = domain.Path{Origin: origin, Destination: dest, Cost: cost, Segments: segments}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get path cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached paths for a single origin.
func (s *SQLPathCache) SetPaths(
	ctx context.Context,
	scope ports.PathScope,
	origin string,
	paths map[string]domain.Path,
) error {
	if s.DB == nil {
		return errors.New("path cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert path cache: origin must not be empty")
	}

	if len(paths) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert path cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.Dialect.Rebind(`
	INSERT INTO path_cache (network_id, revision, origin, destination, cost, segments)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (network_id, revision, origin, destination) DO UPDATE
	SET cost = EXCLUDED.cost,
		segments = EXCLUDED.segments;
	`))
	if err != nil {
		return fmt.Errorf("insert path cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, p := range paths {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert path cache: empty destination key")
		}

		segs, err := encodeSegments(p.Segments)
		if err != nil {
			return fmt.Errorf("insert path cache dest=%q: encode: %w", dest, err)
		}
		if _, err := stmt.ExecContext(ctx, scope.NetworkID, scope.Revision, origin, dest, p.Cost, string(segs)); err != nil {
			return fmt.Errorf("insert path cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert path cache commit: %w", err)
	}

	return nil
}
