package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Temutjin2k/crowdguard/internal/domain/models"
	"github.com/Temutjin2k/crowdguard/internal/domain/types"
)

type SnapshotRepo struct {
	db *pgxpool.Pool
}

func NewSnapshotRepo(db *pgxpool.Pool) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save stores the full snapshot and returns its id.
func (r *SnapshotRepo) Save(ctx context.Context, snap *models.Snapshot) (id int64, err error) {
	defer observe("snapshot_save", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	query := `
		INSERT INTO dashboard_snapshots (prediction_time, summary, sources, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id;`

	err = q.QueryRow(ctx, query, snap.PredictionTime, snap.Summary, snap.Sources, snap).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("snapshot repo: Save: %w", err)
	}
	return id, nil
}

// List returns the newest snapshot headers first.
func (r *SnapshotRepo) List(ctx context.Context, limit int) (records []models.SnapshotRecord, err error) {
	defer observe("snapshot_list", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	query := `
		SELECT id, prediction_time, summary, sources
		FROM dashboard_snapshots
		ORDER BY prediction_time DESC, id DESC
		LIMIT $1;`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("snapshot repo: List: %w", err)
	}
	defer rows.Close()

	records = make([]models.SnapshotRecord, 0, limit)
	for rows.Next() {
		var rec models.SnapshotRecord
		if err = rows.Scan(&rec.ID, &rec.PredictionTime, &rec.Summary, &rec.Sources); err != nil {
			return nil, fmt.Errorf("snapshot repo: List (scan): %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot repo: List (rows): %w", err)
	}
	return records, nil
}

// Latest returns the most recent stored snapshot.
func (r *SnapshotRepo) Latest(ctx context.Context) (snap *models.Snapshot, err error) {
	defer observe("snapshot_latest", time.Now(), &err)

	q := TxorDB(ctx, r.db)

	query := `SELECT payload FROM dashboard_snapshots ORDER BY prediction_time DESC, id DESC LIMIT 1;`

	snap = &models.Snapshot{}
	if err = q.QueryRow(ctx, query).Scan(snap); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("snapshot repo: Latest: %w", err)
	}
	return snap, nil
}
