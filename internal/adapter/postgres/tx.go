package postgres

import (
	"context"
	"time"

	"github.com/Temutjin2k/crowdguard/pkg/metrics"
	"github.com/Temutjin2k/crowdguard/pkg/trm"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const metricsService = "monitor"

type Querier interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// TxorDB returns the transaction stored in ctx by trm.Manager, or the pool.
func TxorDB(ctx context.Context, db *pgxpool.Pool) Querier {
	tx, ok := trm.Tx(ctx)
	if !ok {
		return db
	}
	return tx
}

// observe records the outcome of one repository call. It is deferred with a
// pointer to the named error result so the final error is seen.
func observe(operation string, start time.Time, err *error) {
	metrics.RecordDatabaseQuery(metricsService, operation, *err, time.Since(start))
}
