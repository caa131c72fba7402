package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"housingprice/server/internal/database"
	"housingprice/server/internal/etl"
)

var (
	importTable *string
	importMode  *string
)

func init() {
	importTable = importCmd.Flags().String("table", "monthly", "Target table: monthly or yearly.")
	importMode = importCmd.Flags().String("mode", string(database.ModeReplace), "replace empties the table first, append upserts.")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv> [--table monthly|yearly] [--mode replace|append]",
	Short: "Loads a CSV file into the price database.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := database.ParseImportMode(*importMode)
		if err != nil {
			return err
		}

		db, err := database.NewDatabase(cfg, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.MigrateSchema(); err != nil {
			return err
		}

		ctx := cmd.Context()
		switch database.Source(*importTable) {
		case database.SourceMonthly:
			rows, err := etl.ReadMonthlyFile(args[0])
			if err != nil {
				return err
			}
			return db.ImportMonthlyPrices(ctx, rows, mode)
		case database.SourceYearly:
			rows, err := etl.ReadYearlyFile(args[0])
			if err != nil {
				return err
			}
			return db.ImportYearlyPrices(ctx, rows, mode)
		default:
			return fmt.Errorf("unknown table %q", *importTable)
		}
	},
}
