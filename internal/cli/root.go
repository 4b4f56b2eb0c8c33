// Package cli wires configuration, storage and services into the
// ledger_core command line.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SscSPs/ledger_core/internal/platform/config"
)

// NewRootCmd builds the command tree. Running the binary without a
// subcommand starts the server.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ledger_core",
		Short:         "Double-entry ledger consistency service",
		Long:          "Validates, posts and reverses journal entries against a chart of accounts and accounting periods.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
	root.AddCommand(newServeCmd(), newMigrateCmd(), newValidateCmd())
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		slog.Error("Command failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// loadConfig reads the configuration and installs the JSON logger it
// describes as the default.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
