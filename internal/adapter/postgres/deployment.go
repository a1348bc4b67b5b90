package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

type DeploymentRepo struct {
	db *pgxpool.Pool
}

func NewDeploymentRepo(db *pgxpool.Pool) *DeploymentRepo {
	return &DeploymentRepo{db: db}
}

func (r *DeploymentRepo) Create(ctx context.Context, d *models.Deployment) (err error) {
	defer observe("deployment_create", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	query := `
		INSERT INTO deployments (id, position_id, type, latitude, longitude, coverage_area, priority, confirmed_by, confirmed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	_, err = q.Exec(ctx, query,
		d.ID, d.PositionID, d.Type, d.Lat, d.Lng, d.CoverageArea, d.Priority, d.ConfirmedBy, d.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("deployment repo: Create: %w", err)
	}
	return nil
}

// ConfirmedPositions returns the ids of every position with a recorded deployment.
func (r *DeploymentRepo) ConfirmedPositions(ctx context.Context) (out map[string]struct{}, err error) {
	defer observe("deployment_confirmed_positions", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT position_id FROM deployments;`)
	if err != nil {
		return nil, fmt.Errorf("deployment repo: ConfirmedPositions: %w", err)
	}
	defer rows.Close()

	out = make(map[string]struct{})
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("deployment repo: ConfirmedPositions (scan): %w", err)
		}
		out[id] = struct{}{}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("deployment repo: ConfirmedPositions (rows): %w", err)
	}
	return out, nil
}

// List returns the newest deployments first.
func (r *DeploymentRepo) List(ctx context.Context, limit int) (out []models.Deployment, err error) {
	defer observe("deployment_list", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	query := `
		SELECT id, position_id, type, latitude, longitude, coverage_area, priority, confirmed_by, confirmed_at
		FROM deployments
		ORDER BY confirmed_at DESC
		LIMIT $1;`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("deployment repo: List: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.Deployment
		err = rows.Scan(&d.ID, &d.PositionID, &d.Type, &d.Lat, &d.Lng, &d.CoverageArea, &d.Priority, &d.ConfirmedBy, &d.ConfirmedAt)
		if err != nil {
			return nil, fmt.Errorf("deployment repo: List (scan): %w", err)
		}
		out = append(out, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("deployment repo: List (rows): %w", err)
	}
	return out, nil
}
