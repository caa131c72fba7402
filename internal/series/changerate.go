package series

import (
	"github.com/shopspring/decimal"

	"housingprice/server/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ChangeRatePoint is a month-over-month percentage change for one city.
type ChangeRatePoint struct {
	City       string
	Year       int
	Month      int
	ChangeRate decimal.Decimal
}

// DateKey formats the point's period as "YYYY-MM".
func (p ChangeRatePoint) DateKey() string {
	return models.DateKey(p.Year, p.Month)
}

// DeriveMonthOverMonth computes ((p[i]-p[i-1])/p[i-1])*100, rounded to two
// decimals, for every row after the first of each city.
//
// Rows must already be ordered by (city, year, month); they are grouped by
// city in order of first appearance and never re-sorted.
//
// Quirks kept for compatibility with the stored data consumers:
//   - a null price counts as 0, so a gap reads as a -100% drop followed by
//     a 0% recovery;
//   - a previous price of 0 or null yields a change rate of 0 instead of a
//     division by zero.
func DeriveMonthOverMonth(rows []models.MonthlyPrice) []ChangeRatePoint {
	var order []string
	groups := make(map[string][]models.MonthlyPrice)
	for _, r := range rows {
		if _, ok := groups[r.CityName]; !ok {
			order = append(order, r.CityName)
		}
		groups[r.CityName] = append(groups[r.CityName], r)
	}

	points := make([]ChangeRatePoint, 0, len(rows))
	for _, city := range order {
		group := groups[city]
		for i := 1; i < len(group); i++ {
			current := priceOrZero(group[i].Price)
			previous := priceOrZero(group[i-1].Price)

			rate := decimal.Zero
			if previous.IsPositive() {
				rate = current.Sub(previous).Div(previous).Mul(hundred).Round(2)
			}

			points = append(points, ChangeRatePoint{
				City:       city,
				Year:       group[i].Year,
				Month:      group[i].Month,
				ChangeRate: rate,
			})
		}
	}
	return points
}

func priceOrZero(p decimal.NullDecimal) decimal.Decimal {
	if !p.Valid {
		return decimal.Zero
	}
	return p.Decimal
}
