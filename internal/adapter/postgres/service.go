package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
)

type ServiceRepo struct {
	db *pgxpool.Pool
}

func NewServiceRepo(db *pgxpool.Pool) *ServiceRepo {
	return &ServiceRepo{db: db}
}

// List returns the whole emergency service catalog.
func (r *ServiceRepo) List(ctx context.Context) (out []models.EmergencyService, err error) {
	defer observe("emergency_service_list", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	query := `SELECT id, name, category, latitude, longitude FROM emergency_services ORDER BY id;`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("service repo: List: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.EmergencyService
		if err = rows.Scan(&s.ID, &s.Name, &s.Category, &s.Lat, &s.Lng); err != nil {
			return nil, fmt.Errorf("service repo: List (scan): %w", err)
		}
		out = append(out, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("service repo: List (rows): %w", err)
	}
	return out, nil
}
