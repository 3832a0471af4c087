package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is nil when no database is configured or it could not be reached.
var Pool *pgxpool.Pool

var (
	newPool = pgxpool.New
	pingDB  = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres opens the pool for dsn. An empty dsn disables storage.
func InitPostgres(ctx context.Context, dsn string) error {
	Pool = nil
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pingDB(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("connect to postgres: %w", err)
	}
	Pool = pool
	log.Info("Connected to Postgres")
	return nil
}

// Close releases the pool if one is open.
func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
