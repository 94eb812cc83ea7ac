package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"inventory-manager/internal/db"
	"inventory-manager/migrations"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or inspect the embedded SQL migrations.

Subcommands:
  up      - Apply pending migrations
  status  - Show migration status`,
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := db.Migrate(ctx, pool, migrations.FS)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "No pending migrations")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "applied  %s\n", name)
			}
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			states, err := db.Status(ctx, pool, migrations.FS)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			return printMigrationStatus(cmd.OutOrStdout(), states)
		},
	}

	migrateCmd.AddCommand(upCmd, statusCmd)
	return migrateCmd
}

func printMigrationStatus(out io.Writer, states []db.MigrationState) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tFILE\tSTATUS\tAPPLIED AT")
	for _, st := range states {
		status, at := "pending", "-"
		if st.AppliedAt != nil {
			status = "applied"
			at = st.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.Version, st.Filename, status, at)
	}
	return w.Flush()
}
