package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"expensetracker/src/infra/config"
)

//go:embed schema/sqlite.sql
var sqliteSchema string

// SQLite wraps a database/sql handle on a SQLite file.
type SQLite struct {
	DB   *sql.DB
	path string
	log  *slog.Logger
}

// OpenSQLite opens (creating if needed) the SQLite database at path,
// applies pragmas and ensures the schema.
//
// The handle is limited to a single connection: SQLite allows one writer at
// a time, and a single connection avoids SQLITE_BUSY under concurrent requests.
func OpenSQLite(ctx context.Context, path string, log *slog.Logger) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s := &SQLite{DB: conn, path: path, log: log}
	if err := s.applyPragmas(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info("database connection established",
		"driver", config.StoreSQLite,
		"path", path,
	)
	return s, nil
}

func (s *SQLite) applyPragmas(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := s.DB.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return nil
}

// EnsureSchema creates the expenses table and its indexes if they are missing.
func (s *SQLite) EnsureSchema(ctx context.Context) error {
	for _, stmt := range splitStatements(sqliteSchema) {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply sqlite schema: %w", err)
		}
	}
	return nil
}

// Close closes the database handle.
func (s *SQLite) Close() {
	if s.DB != nil {
		s.DB.Close()
		s.log.Info("database connection closed", "driver", config.StoreSQLite, "path", s.path)
	}
}

// Health checks if the database is reachable.
func (s *SQLite) Health(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// splitStatements splits a schema file on semicolons, dropping comment-only chunks.
func splitStatements(schema string) []string {
	var out []string
	for _, chunk := range strings.Split(schema, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !strings.HasPrefix(trimmed, "--") {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			out = append(out, strings.Join(lines, "\n"))
		}
	}
	return out
}
