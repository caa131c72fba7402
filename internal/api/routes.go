package api

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"housingprice/server/config"
)

// NewRouter builds the gin engine with CORS, request logging and every route.
func NewRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	gin.SetMode(cfg.Server.GinMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(handler.logger))
	router.Use(cors.New(corsConfig(cfg.Server.CORSAllowOrigins)))

	SetupRoutes(router, handler)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.Health)

	api := router.Group("/api")
	{
		api.POST("/price_data", handler.GetPriceData)
		api.POST("/monthly_change_rate_data", handler.GetMonthlyChangeRateData)
		api.POST("/yearly_change_rate_data", handler.GetYearlyChangeRateData)
		api.GET("/ranking_race_data", handler.GetRankingRaceData)
		api.GET("/map_data", handler.GetMapData)
		api.GET("/change_rate_map_data", handler.GetChangeRateMapData)
		api.GET("/map_geojson", handler.GetMapGeoJSON)
		api.GET("/cities", handler.GetCities)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// RequestLogger logs one line per request.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
			return
		}
		entry.Info("Handled request")
	}
}
