package cli

import (
	"context"
	"fmt"
	"log/slog"

	"expensetracker/src/core/ports"
	"expensetracker/src/infra/config"
	"expensetracker/src/infra/db"
	"expensetracker/src/infra/logger"
	"expensetracker/src/infra/repo"
)

// openStore connects the record store selected by cfg.Store.Driver. The
// returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (ports.ExpenseRepository, func(), error) {
	storeLog := logger.WithComponent(log, "store")

	switch cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := db.New(ctx, cfg.Database, storeLog)
		if err != nil {
			return nil, nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, nil, err
		}
		return repo.NewPostgresRepository(pg, storeLog), pg.Close, nil

	case config.StoreSQLite:
		s, err := db.OpenSQLite(ctx, cfg.Database.SQLitePath, storeLog)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewSQLiteRepository(s, storeLog), s.Close, nil

	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on exit")
		return repo.NewMemoryRepository(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
