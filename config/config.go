package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server struct {
		Port    int    `env:"PORT" envDefault:"5000"`
		GinMode string `env:"GIN_MODE" envDefault:"release"`

		// Origins allowed by the CORS middleware
		CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Database struct {
		// One of sqlite, mysql, postgres
		Driver     string `env:"DB_DRIVER" envDefault:"mysql"`
		Host       string `env:"DB_HOST" envDefault:"localhost"`
		Port       int    `env:"DB_PORT" envDefault:"3306"`
		User       string `env:"DB_USER" envDefault:"root"`
		Password   string `env:"DB_PASSWORD"`
		Name       string `env:"DB_NAME" envDefault:"housing_price"`
		Charset    string `env:"DB_CHARSET" envDefault:"utf8mb4"`
		SQLitePath string `env:"DB_SQLITE_PATH" envDefault:"database/housing_price.db"`

		MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
		ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`

		// Create missing price tables when the server starts. Tables are
		// normally created by the import command.
		AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	}

	Scraper struct {
		BaseURL   string        `env:"SCRAPER_BASE_URL" envDefault:"https://fangjia.gotohui.com"`
		UserAgent string        `env:"SCRAPER_USER_AGENT" envDefault:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"`
		Timeout   time.Duration `env:"SCRAPER_TIMEOUT" envDefault:"10s"`

		// Pause between two consecutive page fetches
		Delay time.Duration `env:"SCRAPER_DELAY" envDefault:"1s"`

		StartYear int    `env:"SCRAPER_START_YEAR" envDefault:"2015"`
		EndYear   int    `env:"SCRAPER_END_YEAR" envDefault:"2024"`
		OutputDir string `env:"SCRAPER_OUTPUT_DIR" envDefault:"./data"`

		// Number of city batches buffered between the crawler and the CSV writer
		QueueSize int `env:"SCRAPER_QUEUE_SIZE" envDefault:"16"`
	}

	Log struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
	}

	// Optional JSON file replacing the built-in city catalog
	CityCatalogPath string `env:"CITY_CATALOG"`
}

// LoadConfig reads an optional .env file and parses the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER must be one of sqlite, mysql, postgres (got %q)", c.Database.Driver))
	}
	if c.Scraper.StartYear > c.Scraper.EndYear {
		errs = append(errs, "SCRAPER_START_YEAR must not be after SCRAPER_END_YEAR")
	}
	if c.Scraper.QueueSize <= 0 {
		errs = append(errs, "SCRAPER_QUEUE_SIZE must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	db := c.Database
	switch db.Driver {
	case "sqlite":
		return db.SQLitePath
	case "postgres":
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			db.Host, db.Port, db.User, db.Password, db.Name)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			db.User, db.Password, db.Host, db.Port, db.Name, db.Charset)
	}
}

// NewLogger builds the process logger from the Log section.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if strings.EqualFold(c.Log.Format, "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		logger.WithError(err).Warnf("Unknown log level %q, using info", c.Log.Level)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}
