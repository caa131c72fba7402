package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"housingprice/server/config"
)

var (
	cfg     *config.Config
	catalog *config.Catalog
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "housingctl",
	Short:         "housingctl crawls, merges and imports housing price data.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger = cfg.NewLogger()

		catalog, err = config.LoadCatalog(cfg.CityCatalogPath)
		if err != nil {
			return fmt.Errorf("failed to load city catalog: %w", err)
		}
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
