package cli

import (
	"errors"
	"fmt"
	"io"

	"inventory-manager/internal/app"
	"inventory-manager/internal/core"

	"github.com/spf13/cobra"
)

// errLedgerDiverged is returned when a stored level does not match its movement log.
var errLedgerDiverged = errors.New("stock level diverges from movement log")

func newLedgerCmd() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the stock ledger",
	}

	var companyID, productID, warehouseID int
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild a stock level from its movements and compare",
		Long: `Replay folds every movement of one product/warehouse pair, clamping at
zero, and compares the result with the stored stock level.

Examples:
  inventory ledger replay --company 1 --product 4 --warehouse 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if companyID <= 0 || productID <= 0 || warehouseID <= 0 {
				return errors.New("--company, --product and --warehouse are required")
			}

			ctx := cmd.Context()
			pool, err := openPool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := app.NewAppService(app.Deps{DB: pool, Ledger: core.NewStockLedger(pool)})
			r, err := svc.ReplayLevel(ctx, companyID, productID, warehouseID)
			if err != nil {
				return fmt.Errorf("replay: %w", err)
			}
			return printReplay(cmd.OutOrStdout(), r)
		},
	}
	replayCmd.Flags().IntVar(&companyID, "company", 0, "Company id")
	replayCmd.Flags().IntVar(&productID, "product", 0, "Product id")
	replayCmd.Flags().IntVar(&warehouseID, "warehouse", 0, "Warehouse id")

	ledgerCmd.AddCommand(replayCmd)
	return ledgerCmd
}

// printReplay writes the comparison and returns errLedgerDiverged on mismatch.
func printReplay(out io.Writer, r *core.LedgerReplay) error {
	fmt.Fprintf(out, "product %d / warehouse %d\n", r.ProductID, r.WarehouseID)
	fmt.Fprintf(out, "  movements : %d\n", r.Movements)
	fmt.Fprintf(out, "  stored    : %d\n", r.StoredQuantity)
	fmt.Fprintf(out, "  replayed  : %d\n", r.ReplayQuantity)
	if !r.Consistent {
		fmt.Fprintln(out, "  result    : MISMATCH")
		return errLedgerDiverged
	}
	fmt.Fprintln(out, "  result    : ok")
	return nil
}
