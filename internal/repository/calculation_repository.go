package repository

import (
	"context"
	"time"

	"hindsight/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// createCalculationsTable mirrors the cmd/migrate schema for deployments
// that never run the migrator.
const createCalculationsTable = `
CREATE TABLE IF NOT EXISTS calculations (
    id             UUID        PRIMARY KEY,
    symbol         TEXT        NOT NULL,
    period         TEXT        NOT NULL,
    amount         NUMERIC     NOT NULL,
    initial_price  NUMERIC     NOT NULL,
    final_price    NUMERIC     NOT NULL,
    current_value  NUMERIC     NOT NULL,
    simulated      BOOLEAN     NOT NULL DEFAULT FALSE,
    reason         TEXT        NOT NULL DEFAULT '',
    data_points    INTEGER     NOT NULL,
    warned         BOOLEAN     NOT NULL DEFAULT FALSE,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_calculations_created_at
    ON calculations (created_at DESC);
`

const maxRecentLimit = 500

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CalculationRepository stores the anonymous log of calculator runs.
type CalculationRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewCalculationRepository(pool PgxPool, tracer trace.Tracer) *CalculationRepository {
	return &CalculationRepository{pool: pool, tracer: tracer}
}

func (r *CalculationRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "calculation-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createCalculationsTable)
	return err
}

func (r *CalculationRepository) InsertCalculation(ctx context.Context, rec domain.CalculationRecord) error {
	ctx, span := r.tracer.Start(ctx, "calculation-repo.insert-calculation")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", rec.Symbol))

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO calculations
		     (id, symbol, period, amount, initial_price, final_price, current_value,
		      simulated, reason, data_points, warned, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.Symbol, rec.Period, rec.Amount, rec.InitialPrice, rec.FinalPrice, rec.CurrentValue,
		rec.Simulated, rec.Reason, rec.DataPoints, rec.Warned, createdAt,
	)
	return err
}

// Recent returns the newest runs, optionally for one symbol.
func (r *CalculationRepository) Recent(ctx context.Context, symbol string, limit int) ([]domain.CalculationRecord, error) {
	ctx, span := r.tracer.Start(ctx, "calculation-repo.recent")
	defer span.End()

	if limit <= 0 || limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, symbol, period, amount, initial_price, final_price, current_value,
		        simulated, reason, data_points, warned, created_at
		 FROM calculations
		 WHERE $1 = '' OR symbol = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		symbol, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CalculationRecord
	for rows.Next() {
		var rec domain.CalculationRecord
		if err := rows.Scan(
			&rec.ID, &rec.Symbol, &rec.Period, &rec.Amount, &rec.InitialPrice, &rec.FinalPrice, &rec.CurrentValue,
			&rec.Simulated, &rec.Reason, &rec.DataPoints, &rec.Warned, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
