package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"housingprice/server/internal/etl"
)

var (
	mergeInput  *string
	mergeOutput *string
)

func init() {
	mergeInput = mergeCmd.Flags().String("in", "", "Directory of per-city CSV files (default from SCRAPER_OUTPUT_DIR).")
	mergeOutput = mergeCmd.Flags().String("out", "", "Combined CSV file (default <in>/monthly_price.csv).")
	rootCmd.AddCommand(mergeCmd)
}

var mergeCmd = &cobra.Command{
	Use:   "merge [--in <dir>] [--out <file>]",
	Short: "Concatenates per-city CSV files into one monthly CSV file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := *mergeInput
		if in == "" {
			in = cfg.Scraper.OutputDir
		}
		out := *mergeOutput
		if out == "" {
			out = filepath.Join(in, "monthly_price.csv")
		}

		_, err := etl.Merge(in, out, logger)
		return err
	},
}
