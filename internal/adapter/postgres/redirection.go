package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

type RedirectionRepo struct {
	db *pgxpool.Pool
}

func NewRedirectionRepo(db *pgxpool.Pool) *RedirectionRepo {
	return &RedirectionRepo{db: db}
}

func (r *RedirectionRepo) Create(ctx context.Context, c *models.RedirectionStatusChange) (err error) {
	defer observe("redirection_status_create", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	query := `
		INSERT INTO redirection_statuses (plan_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4);`

	if _, err = q.Exec(ctx, query, c.PlanID, c.Status, c.ChangedBy, c.ChangedAt); err != nil {
		return fmt.Errorf("redirection repo: Create: %w", err)
	}
	return nil
}

// LatestStatuses returns the last recorded status of every plan.
func (r *RedirectionRepo) LatestStatuses(ctx context.Context) (out map[string]types.RedirectionStatus, err error) {
	defer observe("redirection_status_latest", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	query := `
		SELECT DISTINCT ON (plan_id) plan_id, status
		FROM redirection_statuses
		ORDER BY plan_id, changed_at DESC, id DESC;`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("redirection repo: LatestStatuses: %w", err)
	}
	defer rows.Close()

	out = make(map[string]types.RedirectionStatus)
	for rows.Next() {
		var (
			planID string
			status types.RedirectionStatus
		)
		if err = rows.Scan(&planID, &status); err != nil {
			return nil, fmt.Errorf("redirection repo: LatestStatuses (scan): %w", err)
		}
		out[planID] = status
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("redirection repo: LatestStatuses (rows): %w", err)
	}
	return out, nil
}
