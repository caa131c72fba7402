package series

import (
	"github.com/shopspring/decimal"

	"housingprice/server/internal/models"
)

// Round2 rounds v half away from zero to two decimals.
func Round2(v decimal.Decimal) float64 {
	return v.Round(2).InexactFloat64()
}

// NullToFloat rounds a nullable decimal to two places, 0 when null.
func NullToFloat(v decimal.NullDecimal) float64 {
	if !v.Valid {
		return 0
	}
	return Round2(v.Decimal)
}

// MonthlyPriceRows keys monthly prices by "YYYY-MM".
func MonthlyPriceRows(prices []models.MonthlyPrice) []Row[string] {
	rows := make([]Row[string], len(prices))
	for i, p := range prices {
		rows[i] = Row[string]{City: p.CityName, Key: p.DateKey(), Value: NullToFloat(p.Price)}
	}
	return rows
}

// ChangeRateRows keys derived month-over-month rates by "YYYY-MM".
func ChangeRateRows(points []ChangeRatePoint) []Row[string] {
	rows := make([]Row[string], len(points))
	for i, p := range points {
		rows[i] = Row[string]{City: p.City, Key: p.DateKey(), Value: Round2(p.ChangeRate)}
	}
	return rows
}

// YearlyChangeRateRows keys the stored yearly change rates by year.
func YearlyChangeRateRows(prices []models.YearlyPrice) []Row[int] {
	rows := make([]Row[int], len(prices))
	for i, p := range prices {
		rows[i] = Row[int]{City: p.CityName, Key: p.Year, Value: NullToFloat(p.ChangeRate)}
	}
	return rows
}
