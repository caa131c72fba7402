package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// YearlyPrice is one row of yearly_price_for_all. ChangeRate is the
// precomputed year-over-year percentage stored alongside the price.
type YearlyPrice struct {
	CityName   string              `gorm:"column:city_name;primaryKey;size:64" json:"city_name"`
	Year       int                 `gorm:"column:year;primaryKey;autoIncrement:false" json:"year"`
	Price      decimal.NullDecimal `gorm:"column:price;type:decimal(12,2)" json:"price"`
	ChangeRate decimal.NullDecimal `gorm:"column:change_rate;type:decimal(8,2)" json:"change_rate"`
}

func (YearlyPrice) TableName() string {
	return "yearly_price_for_all"
}

// MonthlyPrice is one row of monthly_price_for_all.
type MonthlyPrice struct {
	CityName string              `gorm:"column:city_name;primaryKey;size:64" json:"city_name"`
	Year     int                 `gorm:"column:year;primaryKey;autoIncrement:false" json:"year"`
	Month    int                 `gorm:"column:month;primaryKey;autoIncrement:false" json:"month"`
	Price    decimal.NullDecimal `gorm:"column:price;type:decimal(12,2)" json:"price"`
}

func (MonthlyPrice) TableName() string {
	return "monthly_price_for_all"
}

// DateKey formats the row's period as "YYYY-MM".
func (m MonthlyPrice) DateKey() string {
	return DateKey(m.Year, m.Month)
}

func DateKey(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// SnapshotRow is a single city of a yearly map snapshot.
type SnapshotRow struct {
	CityName   string              `gorm:"column:city_name"`
	Price      decimal.NullDecimal `gorm:"column:price"`
	ChangeRate decimal.NullDecimal `gorm:"column:change_rate"`
}

// YearlySnapshot is one year of yearly_price_for_all together with every
// year available in the table.
type YearlySnapshot struct {
	Year  *int
	Years []int
	Rows  []SnapshotRow
}

// NewPrice wraps a float price into a valid NullDecimal.
func NewPrice(v float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(v))
}
