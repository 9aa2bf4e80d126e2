package cli

import (
	"github.com/spf13/cobra"

	"expensetracker/src/app/server"
	"expensetracker/src/infra/config"
	"expensetracker/src/infra/logger"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Run the HTTP API",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, rootOpts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
		"log_level", cfg.Log.Level,
	)

	ctx := cmd.Context()
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	srv := server.New(cfg, log, store, nil)

	// Run blocks until shutdown signal is received
	return srv.Run(ctx)
}
