package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"housingprice/server/config"
	"housingprice/server/internal/models"
)

// Source selects one of the two price tables.
type Source string

const (
	SourceMonthly Source = "monthly"
	SourceYearly  Source = "yearly"
)

func (s Source) model() any {
	if s == SourceYearly {
		return &models.YearlyPrice{}
	}
	return &models.MonthlyPrice{}
}

// SnapshotOrder selects the ranking column of a yearly snapshot.
type SnapshotOrder int

const (
	OrderByPrice SnapshotOrder = iota
	OrderByChangeRate
)

func (o SnapshotOrder) column() string {
	if o == OrderByChangeRate {
		return "change_rate"
	}
	return "price"
}

type Database struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewDatabase(cfg *config.Config, logger *logrus.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	case "mysql":
		dialector = mysql.Open(cfg.DSN())
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	db, err := open(dialector, logger)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

// NewTestDB opens a private in-memory sqlite database with the schema applied.
func NewTestDB(name string) (*Database, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(name, "/", "_"))
	db, err := open(sqlite.Open(dsn), nil)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.MigrateSchema(); err != nil {
		return nil, err
	}
	return db, nil
}

func open(dialector gorm.Dialector, logger *logrus.Logger) (*Database, error) {
	if logger == nil {
		logger = logrus.New()
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{db: db, logger: logger}, nil
}

// MigrateSchema creates both price tables if they are missing.
func (d *Database) MigrateSchema() error {
	if err := d.db.AutoMigrate(&models.YearlyPrice{}, &models.MonthlyPrice{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// GetMonthlyPrices returns the monthly rows of the given cities ordered by
// city, year and month.
func (d *Database) GetMonthlyPrices(ctx context.Context, cities []string) ([]models.MonthlyPrice, error) {
	var prices []models.MonthlyPrice
	if len(cities) == 0 {
		return prices, nil
	}

	err := d.db.WithContext(ctx).
		Where("city_name IN ?", cities).
		Order("city_name, year, month").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly prices: %w", err)
	}
	return prices, nil
}

// GetYearlyPrices returns the yearly rows of the given cities ordered by
// city and year.
func (d *Database) GetYearlyPrices(ctx context.Context, cities []string) ([]models.YearlyPrice, error) {
	var prices []models.YearlyPrice
	if len(cities) == 0 {
		return prices, nil
	}

	err := d.db.WithContext(ctx).
		Where("city_name IN ?", cities).
		Order("city_name, year").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query yearly prices: %w", err)
	}
	return prices, nil
}

// GetAllMonthlyPrices returns every monthly row ordered by period, then city.
func (d *Database) GetAllMonthlyPrices(ctx context.Context) ([]models.MonthlyPrice, error) {
	var prices []models.MonthlyPrice
	err := d.db.WithContext(ctx).
		Order("year, month, city_name").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly prices: %w", err)
	}
	return prices, nil
}

// GetCities returns the distinct, sorted city names of a table.
func (d *Database) GetCities(ctx context.Context, source Source) ([]string, error) {
	var cities []string
	err := d.db.WithContext(ctx).
		Model(source.model()).
		Distinct().
		Order("city_name").
		Pluck("city_name", &cities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s cities: %w", source, err)
	}
	return cities, nil
}

// CountCities returns the number of distinct cities in each table.
func (d *Database) CountCities(ctx context.Context) (yearly, monthly int64, err error) {
	db := d.db.WithContext(ctx)
	if err = db.Model(&models.YearlyPrice{}).Distinct("city_name").Count(&yearly).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count yearly cities: %w", err)
	}
	if err = db.Model(&models.MonthlyPrice{}).Distinct("city_name").Count(&monthly).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count monthly cities: %w", err)
	}
	return yearly, monthly, nil
}

// GetYearlySnapshot returns one row per city for a year, highest first on the
// chosen column, plus every year present in the table. A year of 0 resolves
// to the latest year. Rows whose ordering column is null are left out.
//
// All queries run on one dedicated connection which is released on return.
func (d *Database) GetYearlySnapshot(ctx context.Context, year int, order SnapshotOrder) (models.YearlySnapshot, error) {
	snapshot := models.YearlySnapshot{
		Years: []int{},
		Rows:  []models.SnapshotRow{},
	}

	err := d.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
		if year == 0 {
			var maxYear sql.NullInt64
			if err := conn.Model(&models.YearlyPrice{}).Select("MAX(year)").Row().Scan(&maxYear); err != nil {
				return fmt.Errorf("failed to resolve latest year: %w", err)
			}
			if !maxYear.Valid {
				return nil
			}
			year = int(maxYear.Int64)
		}
		snapshot.Year = &year

		col := order.column()
		err := conn.Model(&models.YearlyPrice{}).
			Select("city_name, price, change_rate").
			Where("year = ?", year).
			Where(col + " IS NOT NULL").
			Order(col + " DESC").
			Scan(&snapshot.Rows).Error
		if err != nil {
			return fmt.Errorf("failed to query snapshot: %w", err)
		}

		err = conn.Model(&models.YearlyPrice{}).
			Distinct().
			Order("year").
			Pluck("year", &snapshot.Years).Error
		if err != nil {
			return fmt.Errorf("failed to query years: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.YearlySnapshot{}, err
	}

	return snapshot, nil
}
