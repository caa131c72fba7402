package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"housingprice/server/internal/database"
	"housingprice/server/internal/models"
)

func snapshot2023() models.YearlySnapshot {
	year := 2023
	return models.YearlySnapshot{
		Year:  &year,
		Years: []int{2021, 2022, 2023},
		Rows: []models.SnapshotRow{
			{CityName: "Shanghai", Price: models.NewPrice(65000.126), ChangeRate: models.NewPrice(2.1)},
			{CityName: "Beijing", Price: models.NewPrice(60000)},
			{CityName: "Lhasa", Price: models.NewPrice(9000), ChangeRate: models.NewPrice(-0.5)},
		},
	}
}

func TestGetMapDataDefaultsToLatestYear(t *testing.T) {
	store := &MockStore{}
	store.On("GetYearlySnapshot", mock.Anything, 0, database.OrderByPrice).Return(snapshot2023(), nil)

	w, out := perform(t, setupRouter(store), http.MethodGet, "/api/map_data", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, 2023.0, out["year"])
	assert.Equal(t, []any{2021.0, 2022.0, 2023.0}, out["years"])

	data := out["data"].([]any)
	require.Len(t, data, 3)
	assert.Equal(t, map[string]any{"name": "Shanghai", "value": 65000.13, "changeRate": 2.1}, data[0])
	assert.Equal(t, map[string]any{"name": "Beijing", "value": 60000.0, "changeRate": 0.0}, data[1])
	store.AssertExpectations(t)
}

func TestGetMapDataYearParameter(t *testing.T) {
	tests := []struct {
		query string
		year  int
	}{
		{query: "?year=2021", year: 2021},
		{query: "?year=abc", year: 0},
		{query: "?year=", year: 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			store := &MockStore{}
			store.On("GetYearlySnapshot", mock.Anything, tt.year, database.OrderByPrice).Return(snapshot2023(), nil)

			w, _ := perform(t, setupRouter(store), http.MethodGet, "/api/map_data"+tt.query, "")

			assert.Equal(t, http.StatusOK, w.Code)
			store.AssertExpectations(t)
		})
	}
}

func TestGetMapDataEmptyTable(t *testing.T) {
	store := &MockStore{}
	store.On("GetYearlySnapshot", mock.Anything, 0, database.OrderByPrice).Return(models.YearlySnapshot{
		Years: []int{},
		Rows:  []models.SnapshotRow{},
	}, nil)

	_, out := perform(t, setupRouter(store), http.MethodGet, "/api/map_data", "")

	assert.Equal(t, true, out["success"])
	assert.Nil(t, out["year"])
	assert.Equal(t, []any{}, out["years"])
	assert.Equal(t, []any{}, out["data"])
}

func TestGetMapDataStoreFailure(t *testing.T) {
	store := &MockStore{}
	store.On("GetYearlySnapshot", mock.Anything, 0, database.OrderByPrice).Return(models.YearlySnapshot{}, errors.New("gone"))

	w, out := perform(t, setupRouter(store), http.MethodGet, "/api/map_data", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
}

func TestGetChangeRateMapData(t *testing.T) {
	store := &MockStore{}
	store.On("GetYearlySnapshot", mock.Anything, 2023, database.OrderByChangeRate).Return(snapshot2023(), nil)

	_, out := perform(t, setupRouter(store), http.MethodGet, "/api/change_rate_map_data?year=2023", "")

	data := out["data"].([]any)
	require.Len(t, data, 3)
	assert.Equal(t, map[string]any{"name": "Shanghai", "value": 2.1, "price": 65000.13}, data[0])
	store.AssertExpectations(t)
}

func TestGetMapGeoJSON(t *testing.T) {
	store := &MockStore{}
	store.On("GetYearlySnapshot", mock.Anything, 0, database.OrderByChangeRate).Return(snapshot2023(), nil)

	w, out := perform(t, setupRouter(store), http.MethodGet, "/api/map_geojson?metric=change_rate", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "FeatureCollection", out["type"])

	features := out["features"].([]any)
	require.Len(t, features, 2, "cities outside the catalog have no centre")

	first := features[0].(map[string]any)
	geometry := first["geometry"].(map[string]any)
	assert.Equal(t, "Point", geometry["type"])
	assert.Equal(t, []any{121.4737, 31.2304}, geometry["coordinates"])

	props := first["properties"].(map[string]any)
	assert.Equal(t, "Shanghai", props["name"])
	assert.Equal(t, "上海", props["display_name"])
	assert.Equal(t, 2.1, props["change_rate"])
	assert.Equal(t, 2023.0, props["year"])
}

func TestGetMapGeoJSONRejectsUnknownMetric(t *testing.T) {
	store := &MockStore{}

	w, _ := perform(t, setupRouter(store), http.MethodGet, "/api/map_geojson?metric=volume", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	store.AssertNotCalled(t, "GetYearlySnapshot", mock.Anything, mock.Anything, mock.Anything)
}
