// Package cli is the operator command line: schema migrations, ledger
// verification and development tokens.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inventory-manager/internal/config"
	"inventory-manager/internal/db"
	"inventory-manager/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Configuration is read from the
// environment (and an optional .env) when a command runs.
func NewRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "inventory",
		Short:         "Inventory manager operations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg := config.Load()
			logger.Init("inventory-cli", true)
			if verbose {
				logger.SetLevel("debug")
			} else {
				logger.SetLevel(cfg.Logger.Level)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(newMigrateCmd(), newLedgerCmd(), newTokenCmd())
	return root
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openPool connects using DATABASE_URL and the pool settings from config.
func openPool(ctx context.Context) (*pgxpool.Pool, error) {
	cfg := config.Load()
	pool, err := db.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return pool, nil
}
