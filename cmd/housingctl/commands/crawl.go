package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"housingprice/server/internal/processor"
	"housingprice/server/internal/queue"
	"housingprice/server/internal/scraping"
)

var (
	crawlStart  *int
	crawlEnd    *int
	crawlOutput *string
)

func init() {
	crawlStart = crawlCmd.Flags().Int("start", 0, "First year to crawl (default from SCRAPER_START_YEAR).")
	crawlEnd = crawlCmd.Flags().Int("end", 0, "Last year to crawl (default from SCRAPER_END_YEAR).")
	crawlOutput = crawlCmd.Flags().String("out", "", "Directory for per-city CSV files (default from SCRAPER_OUTPUT_DIR).")
	rootCmd.AddCommand(crawlCmd)
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [city code or name...]",
	Short: "Crawls monthly prices into one CSV file per city. No arguments crawls the whole catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if *crawlStart != 0 {
			cfg.Scraper.StartYear = *crawlStart
		}
		if *crawlEnd != 0 {
			cfg.Scraper.EndYear = *crawlEnd
		}
		if *crawlOutput != "" {
			cfg.Scraper.OutputDir = *crawlOutput
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cities, err := catalog.Resolve(args)
		if err != nil {
			return err
		}

		q := queue.NewPriceQueue(cfg.Scraper.QueueSize, logger)
		sink := processor.NewBatchProcessor(q, cfg.Scraper.OutputDir, logger)
		sink.Start()

		crawler := scraping.NewCrawler(cfg, logger)
		total, err := crawler.Run(cities, q)
		sink.Stop()
		if err != nil {
			return err
		}

		files, rows := sink.Written()
		logger.WithFields(logrus.Fields{
			"crawled": total,
			"written": rows,
			"files":   len(files),
			"path":    cfg.Scraper.OutputDir,
		}).Info("Crawl complete")
		return nil
	},
}
