package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"housingprice/server/internal/database"
	"housingprice/server/internal/models"
	"housingprice/server/internal/series"
)

type priceMapEntry struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	ChangeRate float64 `json:"changeRate"`
}

type changeRateMapEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Price float64 `json:"price"`
}

// GetMapData returns one year of prices per city, most expensive first.
func (h *Handler) GetMapData(c *gin.Context) {
	snapshot, ok := h.snapshot(c, database.OrderByPrice)
	if !ok {
		return
	}

	data := make([]priceMapEntry, 0, len(snapshot.Rows))
	for _, row := range snapshot.Rows {
		data = append(data, priceMapEntry{
			Name:       row.CityName,
			Value:      series.NullToFloat(row.Price),
			ChangeRate: series.NullToFloat(row.ChangeRate),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"year":    snapshot.Year,
		"years":   snapshot.Years,
		"data":    data,
	})
}

// GetChangeRateMapData returns one year of change rates per city, highest
// first.
func (h *Handler) GetChangeRateMapData(c *gin.Context) {
	snapshot, ok := h.snapshot(c, database.OrderByChangeRate)
	if !ok {
		return
	}

	data := make([]changeRateMapEntry, 0, len(snapshot.Rows))
	for _, row := range snapshot.Rows {
		data = append(data, changeRateMapEntry{
			Name:  row.CityName,
			Value: series.NullToFloat(row.ChangeRate),
			Price: series.NullToFloat(row.Price),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"year":    snapshot.Year,
		"years":   snapshot.Years,
		"data":    data,
	})
}

// GetMapGeoJSON returns a snapshot as a FeatureCollection of city points.
// Cities without a known centre are left out.
func (h *Handler) GetMapGeoJSON(c *gin.Context) {
	order := database.OrderByPrice
	switch c.DefaultQuery("metric", "price") {
	case "price":
	case "change_rate":
		order = database.OrderByChangeRate
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "metric must be price or change_rate"})
		return
	}

	snapshot, ok := h.snapshot(c, order)
	if !ok {
		return
	}

	fc := geojson.NewFeatureCollection()
	for _, row := range snapshot.Rows {
		city := h.catalog.GetCityByName(row.CityName)
		if city == nil || len(city.Center) != 2 {
			continue
		}

		f := geojson.NewFeature(orb.Point{city.Center[1], city.Center[0]})
		f.Properties["name"] = row.CityName
		f.Properties["display_name"] = h.catalog.DisplayName(row.CityName)
		f.Properties["price"] = series.NullToFloat(row.Price)
		f.Properties["change_rate"] = series.NullToFloat(row.ChangeRate)
		if snapshot.Year != nil {
			f.Properties["year"] = *snapshot.Year
		}
		fc.Append(f)
	}

	c.JSON(http.StatusOK, fc)
}

// snapshot loads the yearly snapshot for the year query parameter. A missing,
// malformed or zero year selects the latest year.
func (h *Handler) snapshot(c *gin.Context, order database.SnapshotOrder) (models.YearlySnapshot, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		year = 0
	}

	snapshot, err := h.store.GetYearlySnapshot(c.Request.Context(), year, order)
	if err != nil {
		h.logger.WithError(err).WithField("year", year).Error("Failed to get map data")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to get map data"})
		return models.YearlySnapshot{}, false
	}
	return snapshot, true
}
