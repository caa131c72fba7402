package scraping

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"housingprice/server/config"
	"housingprice/server/internal/models"
	"housingprice/server/internal/queue"
)

// Crawler walks the configured year range of each city one page at a time,
// pausing between requests. A page that fails is logged and skipped.
type Crawler struct {
	fetcher   *Fetcher
	logger    *logrus.Logger
	delay     time.Duration
	startYear int
	endYear   int
	sleep     func(time.Duration)
}

func NewCrawler(cfg *config.Config, logger *logrus.Logger) *Crawler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Crawler{
		fetcher:   NewFetcher(cfg.Scraper.BaseURL, cfg.Scraper.UserAgent, cfg.Scraper.Timeout),
		logger:    logger,
		delay:     cfg.Scraper.Delay,
		startYear: cfg.Scraper.StartYear,
		endYear:   cfg.Scraper.EndYear,
		sleep:     time.Sleep,
	}
}

// CrawlYear fetches and parses a single (city, year) page.
func (c *Crawler) CrawlYear(city config.City, year int) ([]models.MonthlyPrice, error) {
	body, err := c.fetcher.YearPage(city.Code, year)
	if err != nil {
		return nil, err
	}
	return ParseYearPage(body, city.Name, year)
}

// CrawlCity returns every month found for the city across the year range.
func (c *Crawler) CrawlCity(city config.City) []models.MonthlyPrice {
	c.logger.WithFields(logrus.Fields{
		"city":       city.Name,
		"code":       city.Code,
		"start_year": c.startYear,
		"end_year":   c.endYear,
	}).Info("Crawling city")

	var prices []models.MonthlyPrice
	for year := c.startYear; year <= c.endYear; year++ {
		rows, err := c.CrawlYear(city, year)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"city": city.Name,
				"year": year,
			}).Warn("Skipping year")
		} else {
			c.logger.WithFields(logrus.Fields{
				"city": city.Name,
				"year": year,
				"rows": len(rows),
			}).Info("Fetched year")
			prices = append(prices, rows...)
		}

		c.sleep(c.delay)
	}

	return prices
}

// Run crawls the cities in order and hands each city's rows to the queue.
// It returns the total number of rows crawled.
func (c *Crawler) Run(cities []config.City, q *queue.PriceQueue) (int, error) {
	total := 0
	for _, city := range cities {
		prices := c.CrawlCity(city)
		total += len(prices)

		if err := q.Push(queue.CityBatch{City: city.Name, Prices: prices}); err != nil {
			return total, err
		}
		c.sleep(c.delay)
	}

	c.logger.WithFields(logrus.Fields{
		"cities": len(cities),
		"rows":   total,
	}).Info("Crawl finished")
	return total, nil
}
