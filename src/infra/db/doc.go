// Package db provides database connection management for the SQL record stores.
//
// This package is responsible for:
//   - PostgreSQL connection pool initialization (pgx)
//   - SQLite file handles (modernc.org/sqlite, no cgo)
//   - Idempotent schema bootstrap from embedded SQL
//   - Connection health checks
//
// Example usage:
//
//	pg, err := db.New(ctx, cfg.Database, log)
//	if err != nil {
//	    return err
//	}
//	defer pg.Close()
//	if err := pg.EnsureSchema(ctx); err != nil {
//	    return err
//	}
package db
