package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tour-planner-service/internal/domain"
	"tour-planner-service/internal/platform/db"
	"tour-planner-service/internal/platform/obs"
	"tour-planner-service/internal/ports"
)

// SQL-backed implementation of the TourRepository port.
// The route and schedule are stored as one JSON document per tour.
type SQLTourRepository struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLTourRepository(sqlDB *sql.DB, dialect db.Dialect) *SQLTourRepository {
	return &SQLTourRepository{DB: sqlDB, Dialect: dialect}
}

func (r *SQLTourRepository) SaveTour(ctx context.Context, plan *domain.TourPlan) (err error) {
	defer obs.Time(ctx, "tours.Save")(&err)

	if r.DB == nil {
		return errors.New("sql tour repository: DB is nil")
	}
	if plan == nil || plan.ID == "" {
		return errors.New("save tour: plan id must not be empty")
	}

	payload, err := json.Marshal(toTourRecord(plan))
	if err != nil {
		return fmt.Errorf("save tour %q: encode payload: %w", plan.ID, err)
	}

	_, err = r.DB.ExecContext(ctx, r.Dialect.Rebind(`
	INSERT INTO tours (id, network_id, algorithm, computed_at, payload)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE
	SET network_id = EXCLUDED.network_id,
		algorithm = EXCLUDED.algorithm,
		computed_at = EXCLUDED.computed_at,
		payload = EXCLUDED.payload;
	`), plan.ID, plan.NetworkID, plan.Algorithm, plan.ComputedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("save tour %q: upsert: %w", plan.ID, err)
	}

	return nil
}

func (r *SQLTourRepository) GetTour(ctx context.Context, id string) (_ *domain.TourPlan, err error) {
	defer obs.Time(ctx, "tours.Get")(&err)

	if r.DB == nil {
		return nil, errors.New("sql tour repository: DB is nil")
	}

	var networkID, algorithm, computedAt, payload string
	err = r.DB.QueryRowContext(ctx, r.Dialect.Rebind(`
	SELECT network_id, algorithm, computed_at, payload
	FROM tours
	WHERE id = ?;
	`), id).Scan(&networkID, &algorithm, &computedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get tour %q: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get tour %q: query tours table: %w", id, err)
	}

	at, err := time.Parse(time.RFC3339Nano, computedAt)
	if err != nil {
		return nil, fmt.Errorf("get tour %q: parse computed_at: %w", id, err)
	}

	var rec tourRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("get tour %q: decode payload: %w", id, err)
	}

	return rec.plan(id, networkID, algorithm, at), nil
}
