package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housingprice/server/internal/models"
)

func TestParseImportMode(t *testing.T) {
	mode, err := ParseImportMode("append")
	require.NoError(t, err)
	assert.Equal(t, ModeAppend, mode)

	mode, err = ParseImportMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeReplace, mode)

	_, err = ParseImportMode("merge")
	assert.Error(t, err)
}

func TestImportReplace(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)
	ctx := context.Background()

	err := db.ImportMonthlyPrices(ctx, []models.MonthlyPrice{
		monthly("Nanjing", 2024, 1, 31000),
	}, ModeReplace)
	require.NoError(t, err)

	prices, err := db.GetAllMonthlyPrices(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "Nanjing", prices[0].CityName)
}

func TestImportReplaceWithNoRowsEmptiesTable(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)
	ctx := context.Background()

	require.NoError(t, db.ImportYearlyPrices(ctx, nil, ModeReplace))

	cities, err := db.GetCities(ctx, SourceYearly)
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestImportAppendUpserts(t *testing.T) {
	db := setupTestDB(t)
	seed(t, db)
	ctx := context.Background()

	err := db.ImportYearlyPrices(ctx, []models.YearlyPrice{
		yearly("Beijing", 2023, 59000, -3.28),
		yearly("Hangzhou", 2023, 33000, 0.5),
	}, ModeAppend)
	require.NoError(t, err)

	prices, err := db.GetYearlyPrices(ctx, []string{"Beijing", "Hangzhou"})
	require.NoError(t, err)
	require.Len(t, prices, 3)

	assert.Equal(t, "Beijing", prices[1].CityName)
	assert.Equal(t, 2023, prices[1].Year)
	assert.Equal(t, "59000", prices[1].Price.Decimal.String())
	assert.Equal(t, "-3.28", prices[1].ChangeRate.Decimal.String())
	assert.Equal(t, "Hangzhou", prices[2].CityName)
}

func TestImportRejectsUnknownMode(t *testing.T) {
	db := setupTestDB(t)

	err := db.ImportMonthlyPrices(context.Background(), []models.MonthlyPrice{
		monthly("Beijing", 2024, 1, 1),
	}, ImportMode("merge"))
	assert.Error(t, err)
}
