package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"housingprice/server/internal/models"
)

// ImportMode controls how imported rows meet the existing table contents.
type ImportMode string

const (
	// ModeReplace empties the table before inserting.
	ModeReplace ImportMode = "replace"
	// ModeAppend inserts rows and overwrites existing ones with the same key.
	ModeAppend ImportMode = "append"
)

func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(s) {
	case ModeReplace, ModeAppend:
		return ImportMode(s), nil
	case "":
		return ModeReplace, nil
	}
	return "", fmt.Errorf("unknown import mode %q", s)
}

const importBatchSize = 500

func (d *Database) ImportMonthlyPrices(ctx context.Context, rows []models.MonthlyPrice, mode ImportMode) error {
	if err := importRows(d.db.WithContext(ctx), rows, mode); err != nil {
		return fmt.Errorf("failed to import monthly prices: %w", err)
	}
	d.logger.WithFields(logrus.Fields{
		"table": models.MonthlyPrice{}.TableName(),
		"rows":  len(rows),
		"mode":  mode,
	}).Info("Imported price rows")
	return nil
}

func (d *Database) ImportYearlyPrices(ctx context.Context, rows []models.YearlyPrice, mode ImportMode) error {
	if err := importRows(d.db.WithContext(ctx), rows, mode); err != nil {
		return fmt.Errorf("failed to import yearly prices: %w", err)
	}
	d.logger.WithFields(logrus.Fields{
		"table": models.YearlyPrice{}.TableName(),
		"rows":  len(rows),
		"mode":  mode,
	}).Info("Imported price rows")
	return nil
}

// importRows writes rows in a single transaction so readers never observe a
// half-replaced table.
func importRows[T any](db *gorm.DB, rows []T, mode ImportMode) error {
	return db.Transaction(func(tx *gorm.DB) error {
		switch mode {
		case ModeReplace:
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error; err != nil {
				return err
			}
			if len(rows) == 0 {
				return nil
			}
			return tx.CreateInBatches(rows, importBatchSize).Error
		case ModeAppend:
			if len(rows) == 0 {
				return nil
			}
			return tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(rows, importBatchSize).Error
		default:
			return fmt.Errorf("unknown import mode %q", mode)
		}
	})
}
