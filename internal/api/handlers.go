package api

import (
	"cmp"
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"housingprice/server/config"
	"housingprice/server/internal/database"
	"housingprice/server/internal/models"
	"housingprice/server/internal/series"
)

const (
	msgNoData      = "No data found"
	msgNoValidData = "No valid data found"
	msgBadRequest  = "Request body must be a JSON object with a cities array"
)

// Store is the read side of the price database.
type Store interface {
	GetMonthlyPrices(ctx context.Context, cities []string) ([]models.MonthlyPrice, error)
	GetYearlyPrices(ctx context.Context, cities []string) ([]models.YearlyPrice, error)
	GetAllMonthlyPrices(ctx context.Context) ([]models.MonthlyPrice, error)
	GetCities(ctx context.Context, source database.Source) ([]string, error)
	GetYearlySnapshot(ctx context.Context, year int, order database.SnapshotOrder) (models.YearlySnapshot, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	store   Store
	catalog *config.Catalog
	logger  *logrus.Logger
}

// CitiesRequest is the body of the multi-city series endpoints.
type CitiesRequest struct {
	Cities []string `json:"cities"`
}

func NewHandler(store Store, catalog *config.Catalog, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}

	return &Handler{
		store:   store,
		catalog: catalog,
		logger:  logger,
	}
}

// GetPriceData returns the monthly price series of up to five cities.
func (h *Handler) GetPriceData(c *gin.Context) {
	selected, ok := h.bindCities(c, "dates")
	if !ok {
		return
	}

	prices, err := h.store.GetMonthlyPrices(c.Request.Context(), selected)
	if err != nil {
		h.seriesFailure(c, "dates", err, "Failed to get monthly prices")
		return
	}

	respondChart(c, "dates", series.MonthlyPriceRows(prices), selected, series.Style{KeyField: "date"})
}

// GetMonthlyChangeRateData returns month-over-month change rates derived from
// the monthly prices of up to five cities.
func (h *Handler) GetMonthlyChangeRateData(c *gin.Context) {
	selected, ok := h.bindCities(c, "dates")
	if !ok {
		return
	}

	prices, err := h.store.GetMonthlyPrices(c.Request.Context(), selected)
	if err != nil {
		h.seriesFailure(c, "dates", err, "Failed to get monthly prices")
		return
	}

	rows := series.ChangeRateRows(series.DeriveMonthOverMonth(prices))
	respondChart(c, "dates", rows, selected, series.Style{KeyField: "date", Filled: true})
}

// GetYearlyChangeRateData returns the stored yearly change rates of up to
// five cities.
func (h *Handler) GetYearlyChangeRateData(c *gin.Context) {
	selected, ok := h.bindCities(c, "years")
	if !ok {
		return
	}

	prices, err := h.store.GetYearlyPrices(c.Request.Context(), selected)
	if err != nil {
		h.seriesFailure(c, "years", err, "Failed to get yearly prices")
		return
	}

	respondChart(c, "years", series.YearlyChangeRateRows(prices), selected, series.Style{KeyField: "year", Filled: true})
}

// bindCities decodes the city selection. An empty selection is answered
// here, before any store access.
func (h *Handler) bindCities(c *gin.Context, axisField string) ([]string, bool) {
	var req CitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid city selection")
		body := emptySeries(axisField, []string{})
		body["success"] = false
		body["error"] = msgBadRequest
		c.JSON(http.StatusBadRequest, body)
		return nil, false
	}

	if len(req.Cities) == 0 {
		body := emptySeries(axisField, []string{})
		body["success"] = true
		c.JSON(http.StatusOK, body)
		return nil, false
	}

	return series.CapSelection(req.Cities), true
}

func (h *Handler) seriesFailure(c *gin.Context, axisField string, err error, msg string) {
	h.logger.WithError(err).Error(msg)
	body := emptySeries(axisField, []string{})
	body["success"] = false
	body["error"] = msg
	c.JSON(http.StatusInternalServerError, body)
}

func emptySeries(axisField string, cities []string) gin.H {
	return gin.H{
		axisField:   []any{},
		"series":    []series.Series{},
		"tableData": []any{},
		"cities":    cities,
	}
}

func respondChart[K cmp.Ordered](c *gin.Context, axisField string, rows []series.Row[K], selected []string, style series.Style) {
	aligned, err := series.Align(rows, selected)
	if errors.Is(err, series.ErrNoData) {
		body := emptySeries(axisField, aligned.Cities)
		body["success"] = false
		body["error"] = msgNoData
		c.JSON(http.StatusOK, body)
		return
	}

	chart := series.Assemble(aligned, style)
	c.JSON(http.StatusOK, gin.H{
		axisField:   aligned.Axis,
		"series":    chart.Series,
		"tableData": chart.Table,
		"cities":    aligned.Cities,
		"success":   true,
	})
}

// GetRankingRaceData returns every month's cities ordered by price. Failures
// are reported with status 200 and success false.
func (h *Handler) GetRankingRaceData(c *gin.Context) {
	prices, err := h.store.GetAllMonthlyPrices(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to get ranking data")
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Failed to get ranking data"})
		return
	}

	ranking, err := series.BuildRanking(prices, h.catalog.DisplayName)
	switch {
	case errors.Is(err, series.ErrNoRows):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": msgNoData})
		return
	case errors.Is(err, series.ErrNoValidData):
		c.JSON(http.StatusOK, gin.H{"success": false, "error": msgNoValidData})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"timePoints": ranking.TimePoints,
		"data":       ranking.Data,
	})
}

// GetCities lists the distinct cities of the monthly (default) or yearly table.
func (h *Handler) GetCities(c *gin.Context) {
	source := database.Source(c.DefaultQuery("source", string(database.SourceMonthly)))
	if source != database.SourceMonthly && source != database.SourceYearly {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "source must be monthly or yearly"})
		return
	}

	cities, err := h.store.GetCities(c.Request.Context(), source)
	if err != nil {
		h.logger.WithError(err).WithField("source", source).Error("Failed to get cities")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to get cities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "source": source, "cities": cities})
}

func (h *Handler) Health(c *gin.Context) {
	if err := h.store.Ping(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Database ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
