// Package cli defines the expense-tracker command line.
package cli

import (
	"github.com/spf13/cobra"

	"expensetracker/src/infra/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
}

// NewRootCommand creates the root command. Invoked without a subcommand it serves the API.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	serve := NewServeCommand(opts)

	cmd := &cobra.Command{
		Use:           "expense-tracker",
		Short:         "Expense tracker API server",
		Long:          "A REST API for recording expenses and querying them by category, date range and total.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", config.DefaultEnvFile, "optional .env file loaded before reading APP_* variables")

	cmd.AddCommand(serve)
	cmd.AddCommand(NewInitDBCommand(opts))

	return cmd
}
