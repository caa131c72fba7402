package series

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housingprice/server/internal/models"
)

func TestBuildRanking(t *testing.T) {
	names := map[string]string{"Shanghai": "上海", "Beijing": "北京"}
	displayName := func(name string) string {
		if n, ok := names[name]; ok {
			return n
		}
		return name
	}

	ranking, err := BuildRanking([]models.MonthlyPrice{
		monthly("Beijing", 2024, 1, 60000),
		monthly("Shanghai", 2024, 1, 65000),
		monthly("Nanning", 2024, 1, 10000),
		monthly("Beijing", 2023, 12, 61000),
		monthly("Shanghai", 2023, 12, 64000),
	}, displayName)
	require.NoError(t, err)

	assert.Equal(t, []string{"2023-12", "2024-01"}, ranking.TimePoints)
	assert.Equal(t, []RankEntry{
		{City: "上海", CityEn: "Shanghai", Price: 65000},
		{City: "北京", CityEn: "Beijing", Price: 60000},
		{City: "Nanning", CityEn: "Nanning", Price: 10000},
	}, ranking.Data["2024-01"])
	assert.Equal(t, []RankEntry{
		{City: "上海", CityEn: "Shanghai", Price: 64000},
		{City: "北京", CityEn: "Beijing", Price: 61000},
	}, ranking.Data["2023-12"])
}

func TestBuildRankingExcludesNonPositive(t *testing.T) {
	ranking, err := BuildRanking([]models.MonthlyPrice{
		monthly("Beijing", 2024, 1, 0),
		monthly("Shanghai", 2024, 1, 65000),
		{CityName: "Wuhan", Year: 2024, Month: 1},
		monthly("Xiamen", 2024, 1, -5),
		monthly("Beijing", 2024, 2, 0),
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01"}, ranking.TimePoints)
	assert.NotContains(t, ranking.Data, "2024-02", "a period with no qualifying rows is omitted")
	require.Len(t, ranking.Data["2024-01"], 1)
	assert.Equal(t, "Shanghai", ranking.Data["2024-01"][0].City)
}

func TestBuildRankingTiesKeepInputOrder(t *testing.T) {
	ranking, err := BuildRanking([]models.MonthlyPrice{
		monthly("C", 2020, 5, 100),
		monthly("A", 2020, 5, 200),
		monthly("B", 2020, 5, 100),
		monthly("D", 2020, 5, 100),
	}, nil)
	require.NoError(t, err)

	var order []string
	for _, e := range ranking.Data["2020-05"] {
		order = append(order, e.CityEn)
	}
	assert.Equal(t, []string{"A", "C", "B", "D"}, order)
}

func TestBuildRankingComparesExactPrices(t *testing.T) {
	a := models.MonthlyPrice{CityName: "A", Year: 2020, Month: 1,
		Price: decimal.NewNullDecimal(decimal.RequireFromString("100.001"))}
	b := models.MonthlyPrice{CityName: "B", Year: 2020, Month: 1,
		Price: decimal.NewNullDecimal(decimal.RequireFromString("100.004"))}

	ranking, err := BuildRanking([]models.MonthlyPrice{a, b}, nil)
	require.NoError(t, err)

	assert.Equal(t, "B", ranking.Data["2020-01"][0].City)
	assert.Equal(t, 100.0, ranking.Data["2020-01"][0].Price)
}

func TestBuildRankingNoRows(t *testing.T) {
	ranking, err := BuildRanking(nil, nil)

	assert.ErrorIs(t, err, ErrNoRows)
	assert.Empty(t, ranking.TimePoints)
}

func TestBuildRankingNoValidData(t *testing.T) {
	_, err := BuildRanking([]models.MonthlyPrice{
		monthly("Beijing", 2024, 1, 0),
		{CityName: "Shanghai", Year: 2024, Month: 1},
	}, nil)

	assert.ErrorIs(t, err, ErrNoValidData)
	assert.NotErrorIs(t, err, ErrNoRows)
}
