package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"housingprice/server/internal/etl"
)

func init() {
	rootCmd.AddCommand(citiesCmd)
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "Lists the cities of the catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tDISPLAY\tCSV FILE")
		for _, city := range catalog.Cities {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", city.Code, city.Name, city.DisplayName, etl.CityFileName(city.Name))
		}
		return w.Flush()
	},
}
