package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"housingprice/server/config"
	"housingprice/server/internal/api"
	"housingprice/server/internal/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := cfg.NewLogger()

	catalog, err := config.LoadCatalog(cfg.CityCatalogPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load city catalog")
	}

	db, err := database.NewDatabase(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	if err := prepareSchema(cfg, db); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// A store that is down at startup is reported, not fatal.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	yearly, monthly, err := db.CountCities(ctx)
	cancel()
	if err != nil {
		logger.WithError(err).Error("Database check failed")
	} else {
		logger.WithFields(logrus.Fields{
			"yearly_cities":  yearly,
			"monthly_cities": monthly,
		}).Info("Database connected")
	}

	handler := api.NewHandler(db, catalog, logger)
	router := api.NewRouter(cfg, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
}

// prepareSchema leaves tables untouched unless auto-migration is enabled.
func prepareSchema(cfg *config.Config, db *database.Database) error {
	if !cfg.Database.AutoMigrate {
		return nil
	}
	return db.MigrateSchema()
}
