package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/platform/db"
	"tour-planner-service/internal/platform/obs"
	"tour-planner-service/internal/ports"
)

// SQL-backed implementation of the RoadNetworkRepository port.
type SQLRoadNetworkRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLRoadNetworkRepository(sqlDB *sql.DB, dialect db.Dialect) *SQLRoadNetworkRepository {
	return &SQLRoadNetworkRepository{DB: sqlDB, Dialect: dialect}
}

// Return a summary of every stored network.
func (r *SQLRoadNetworkRepository) ListNetworks(ctx context.Context) (_ []ports.NetworkInfo, err error) {
	defer obs.Time(ctx, "networks.List")(&err)

	if r.DB == nil {
		return nil, errors.New("sql network repository: DB is nil")
	}

	query := `
	SELECT
		n.id,
		(SELECT COUNT(*) FROM intersections i WHERE i.network_id = n.id),
		(SELECT COUNT(*) FROM segments s WHERE s.network_id = n.id)
	FROM networks n
	ORDER BY n.id;
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list networks: query networks table: %w", err)
	}
	defer rows.Close()

	out := make([]ports.NetworkInfo, 0, 8)
	for rows.Next() {
		var info ports.NetworkInfo
		if err := rows.Scan(&info.ID, &info.NumIntersections, &info.NumSegments); err != nil {
			return nil, fmt.Errorf("list networks: scan row: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list networks: row iteration: %w", err)
	}

	return out, nil
}

// Load the network with all its intersections and segments.
func (r *SQLRoadNetworkRepository) GetNetwork(ctx context.Context, id string) (_ *domain.RoadNetwork, err error) {
	defer obs.Time(ctx, "networks.Get")(&err)

	if r.DB == nil {
		return nil, errors.New("sql network repository: DB is nil")
	}

	var found string
	err = r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`SELECT id FROM networks WHERE id = ?`), id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get network %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get network %q: query networks table: %w", id, err)
	}

	network := domain.NewRoadNetwork(id)

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(`
	SELECT id, lat, lon
	FROM intersections
	WHERE network_id = ?;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get network %q: query intersections table: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var iid string
		var lat, lon float64
		if err := rows.Scan(&iid, &lat, &lon); err != nil {
			return nil, fmt.Errorf("get network %q: scan intersection: %w", id, err)
		}
		network.AddIntersection(domain.NewIntersection(iid, lat, lon))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get network %q: intersection iteration: %w", id, err)
	}

	segRows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(`
	SELECT origin, destination, length, name
	FROM segments
	WHERE network_id = ?
	ORDER BY origin, destination;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get network %q: query segments table: %w", id, err)
	}
	defer segRows.Close()

	for segRows.Next() {
		var s domain.Segment
		if err := segRows.Scan(&s.Origin, &s.Destination, &s.Length, &s.Name); err != nil {
			return nil, fmt.Errorf("get network %q: scan segment: %w", id, err)
		}
		if err := network.AddSegment(s); err != nil {
			return nil, fmt.Errorf("get network %q: %w", id, err)
		}
	}
	if err := segRows.Err(); err != nil {
		return nil, fmt.Errorf("get network %q: segment iteration: %w", id, err)
	}

	return network, nil
}

// SaveNetwork replaces the stored network with the same id and drops the
// paths cached for it.
func (r *SQLRoadNetworkRepository) SaveNetwork(ctx context.Context, n *domain.RoadNetwork) error {
	if r.DB == nil {
		return errors.New("sql network repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save network %q: begin tx: %w", n.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{
		`DELETE FROM path_cache WHERE network_id = ?`,
		`DELETE FROM segments WHERE network_id = ?`,
		`DELETE FROM intersections WHERE network_id = ?`,
		`DELETE FROM networks WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(q), n.ID); err != nil {
			return fmt.Errorf("save network %q: clear: %w", n.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(`INSERT INTO networks (id) VALUES (?)`), n.ID); err != nil {
		return fmt.Errorf("save network %q: insert network: %w", n.ID, err)
	}

	iStmt, err := tx.PrepareContext(ctx, r.Dialect.Rebind(`
	INSERT INTO intersections (network_id, id, lat, lon)
	VALUES (?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save network %q: prepare intersections: %w", n.ID, err)
	}
	defer iStmt.Close()

	for _, i := range n.Intersections() {
		if _, err := iStmt.ExecContext(ctx, n.ID, i.ID, i.Lat(), i.Lon()); err != nil {
			return fmt.Errorf("save network %q: insert intersection %q: %w", n.ID, i.ID, err)
		}
	}

	sStmt, err := tx.PrepareContext(ctx, r.Dialect.Rebind(`
	INSERT INTO segments (network_id, origin, destination, length, name)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save network %q: prepare segments: %w", n.ID, err)
	}
	defer sStmt.Close()

	for _, s := range n.Segments() {
		if _, err := sStmt.ExecContext(ctx, n.ID, s.Origin, s.Destination, s.Length, s.Name); err != nil {
			return fmt.Errorf("save network %q: insert segment %q->%q: %w", n.ID, s.Origin, s.Destination, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save network %q: commit tx: %w", n.ID, err)
	}

	return nil
}
