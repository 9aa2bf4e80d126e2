package db

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"expensetracker/src/infra/config"
)

//go:embed schema/postgres.sql
var postgresSchema string

// Postgres wraps a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
	log  *slog.Logger
}

// New creates a PostgreSQL connection pool and verifies it with a ping.
func New(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established",
		"driver", config.StorePostgres,
		"host", poolCfg.ConnConfig.Host,
		"port", poolCfg.ConnConfig.Port,
		"database", poolCfg.ConnConfig.Database,
	)

	return &Postgres{
		Pool: pool,
		log:  log,
	}, nil
}

// EnsureSchema creates the expenses table and its indexes if they are missing.
// It is idempotent and safe to run on every start.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	// No arguments: pgx sends this over the simple protocol, which allows several statements.
	if _, err := p.Pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to apply postgres schema: %w", err)
	}
	p.log.Info("database schema ensured", "driver", config.StorePostgres)
	return nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		p.log.Info("database connection closed", "driver", config.StorePostgres)
	}
}

// Health checks if the database is reachable.
func (p *Postgres) Health(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
