// Package repo contains the record store implementations of ports.ExpenseRepository.
//
//   - PostgresRepository: pgx against the pool in src/infra/db (the default store)
//   - SQLiteRepository: database/sql on modernc.org/sqlite, for single-host installs
//   - MemoryRepository: a mutex-guarded map for tests and throwaway runs
//
// The SQL stores share one query builder (sqlbuilder.go) that compiles a
// query.Filter into a parameterized WHERE clause. Filter values are always
// bound, never spliced into SQL text.
//
// Stores return domain errors for conditions the caller can act on (not
// found, constraint violations) and wrapped driver errors for everything else.
package repo
