package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"expensetracker/src/infra/config"
	"expensetracker/src/infra/db"
	"expensetracker/src/infra/logger"
)

// NewInitDBCommand creates the init-db command, which applies the embedded
// schema to the configured SQL store and exits.
func NewInitDBCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "init-db",
		Short:         "Create the expenses table and indexes if missing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitDB(cmd, rootOpts)
		},
	}
}

func runInitDB(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	ctx := cmd.Context()

	switch cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := db.New(ctx, cfg.Database, log)
		if err != nil {
			return err
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
	case config.StoreSQLite:
		// Opening applies the schema.
		s, err := db.OpenSQLite(ctx, cfg.Database.SQLitePath, log)
		if err != nil {
			return err
		}
		s.Close()
	case config.StoreMemory:
		return errors.New("the memory store has no schema to initialise")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.Store.Driver)
	return nil
}
