package series

import (
	"errors"
	"slices"

	"housingprice/server/internal/models"
)

var (
	// ErrNoRows reports that the ranking input was empty.
	ErrNoRows = errors.New("no rows")
	// ErrNoValidData reports that rows existed but none had a positive price.
	ErrNoValidData = errors.New("no valid data")
)

// RankEntry is one city in a ranking bucket.
type RankEntry struct {
	City   string  `json:"city"`
	CityEn string  `json:"city_en"`
	Price  float64 `json:"price"`
}

// Ranking maps each "YYYY-MM" time point to its cities, most expensive first.
type Ranking struct {
	TimePoints []string
	Data       map[string][]RankEntry
}

// BuildRanking buckets monthly prices by period. Null and non-positive
// prices are dropped, and a period left with no entries is omitted. Equal
// prices keep their input order. displayName maps a stored city name to the
// label shown in the ranking; nil keeps the stored name.
func BuildRanking(rows []models.MonthlyPrice, displayName func(string) string) (Ranking, error) {
	if len(rows) == 0 {
		return Ranking{TimePoints: []string{}, Data: map[string][]RankEntry{}}, ErrNoRows
	}
	if displayName == nil {
		displayName = func(name string) string { return name }
	}

	type ranked struct {
		entry RankEntry
		price models.MonthlyPrice
	}
	buckets := make(map[string][]ranked)
	for _, r := range rows {
		if !r.Price.Valid || !r.Price.Decimal.IsPositive() {
			continue
		}
		key := r.DateKey()
		buckets[key] = append(buckets[key], ranked{
			entry: RankEntry{
				City:   displayName(r.CityName),
				CityEn: r.CityName,
				Price:  Round2(r.Price.Decimal),
			},
			price: r,
		})
	}

	ranking := Ranking{
		TimePoints: make([]string, 0, len(buckets)),
		Data:       make(map[string][]RankEntry, len(buckets)),
	}
	if len(buckets) == 0 {
		return ranking, ErrNoValidData
	}

	for key, bucket := range buckets {
		slices.SortStableFunc(bucket, func(a, b ranked) int {
			return b.price.Price.Decimal.Cmp(a.price.Price.Decimal)
		})
		entries := make([]RankEntry, len(bucket))
		for i, b := range bucket {
			entries[i] = b.entry
		}
		ranking.Data[key] = entries
		ranking.TimePoints = append(ranking.TimePoints, key)
	}
	slices.Sort(ranking.TimePoints)

	return ranking, nil
}
