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

// SQL-backed implementation of the RequestSetRepository port.
type SQLRequestSetRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLRequestSetRepository(sqlDB *sql.DB, dialect db.Dialect) *SQLRequestSetRepository {
	return &SQLRequestSetRepository{DB: sqlDB, Dialect: dialect}
}

func (r *SQLRequestSetRepository) GetRequestSet(ctx context.Context, id string) (_ *domain.RequestSet, err error) {
	defer obs.Time(ctx, "requestsets.Get")(&err)

	if r.DB == nil {
		return nil, errors.New("sql request set repository: DB is nil")
	}

	var networkID, depot, departure string
	err = r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`
	SELECT network_id, depot_id, departure
	FROM request_sets
	WHERE id = ?;
	`), id).Scan(&networkID, &depot, &departure)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get request set %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get request set %q: query request_sets table: %w", id, err)
	}

	dep, err := domain.ParseClock(departure)
	if err != nil {
		return nil, fmt.Errorf("get request set %q: %w", id, err)
	}
	rs := domain.NewRequestSet(depot, dep)
	rs.ID = id
	rs.NetworkID = networkID

	rows, err := r.DB.QueryContext(ctx, r.Dialect.Rebind(`
	SELECT pickup_id, delivery_id, pickup_duration_seconds, delivery_duration_seconds
	FROM requests
	WHERE request_set_id = ?
	ORDER BY seq;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("get request set %q: query requests table: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var req domain.Request
		if err := rows.Scan(&req.PickupID, &req.DeliveryID, &req.PickupDurationSeconds, &req.DeliveryDurationSeconds); err != nil {
			return nil, fmt.Errorf("get request set %q: scan row: %w", id, err)
		}
		rs.Add(&req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get request set %q: row iteration: %w", id, err)
	}

	return rs, nil
}

// SaveRequestSet replaces the stored request set with the same id.
func (r *SQLRequestSetRepository) SaveRequestSet(ctx context.Context, rs *domain.RequestSet) error {
	if r.DB == nil {
		return errors.New("sql request set repository: DB is nil")
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save request set %q: begin tx: %w", rs.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, r.Dialect.Rebind(`DELETE FROM requests WHERE request_set_id = ?`), rs.ID); err != nil {
		return fmt.Errorf("save request set %q: clear requests: %w", rs.ID, err)
	}

	_, err = tx.ExecContext(ctx, r.Dialect.Rebind(`
	INSERT INTO request_sets (id, network_id, depot_id, departure)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET network_id = EXCLUDED.network_id,
		depot_id = EXCLUDED.depot_id,
		departure = EXCLUDED.departure;
	`), rs.ID, rs.NetworkID, rs.DepotID, domain.FormatClock(rs.DepartureTime))
	if err != nil {
		return fmt.Errorf("save request set %q: upsert: %w", rs.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, r.Dialect.Rebind(`
	INSERT INTO requests (request_set_id, seq, pickup_id, delivery_id, pickup_duration_seconds, delivery_duration_seconds)
	VALUES (?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save request set %q: prepare insert: %w", rs.ID, err)
	}
	defer stmt.Close()

	for i, req := range rs.Requests {
		if _, err := stmt.ExecContext(ctx, rs.ID, i, req.PickupID, req.DeliveryID, req.PickupDurationSeconds, req.DeliveryDurationSeconds); err != nil {
			return fmt.Errorf("save request set %q: insert request %d: %w", rs.ID, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save request set %q: commit tx: %w", rs.ID, err)
	}

	return nil
}
