package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/actuator"
	"github.com/4Noyis/actuator-dashboard/internal/server/api"
	"github.com/4Noyis/actuator-dashboard/internal/server/config"
	"github.com/4Noyis/actuator-dashboard/internal/server/dashboard"
	"github.com/4Noyis/actuator-dashboard/internal/server/database"
	"github.com/4Noyis/actuator-dashboard/internal/server/web"
	"github.com/gin-gonic/gin"
)

func main() {
	// -------- load config ---------
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err) // logger is not configured yet
		os.Exit(1)
	}

	// --------- initialize logger ----------
	if cfg.EnableDebugLog {
		appLogger.SetDebug(true)
		appLogger.Info("Debug logging enabled")
	}
	appLogger.Info("Server configuration loaded.")
	appLogger.Debug("Full configuration: %+v", cfg)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --------- optional InfluxDB history ------------
	opts := dashboard.Options{
		PageSize:     cfg.Dashboard.PageSize,
		TickInterval: cfg.Dashboard.TickInterval,
	}
	var history api.HistoryReader
	if cfg.InfluxDB.Enabled() {
		dbWriter, err := database.NewInfluxDBWriter(cfg.InfluxDB, cfg.Actuator.BaseURL)
		if err != nil {
			appLogger.Fatal("Failed to initialize InfluxDB writer: %v", err)
		}
		defer dbWriter.Close()
		opts.Recorder = dbWriter

		dbReader, err := database.NewInfluxDBReader(cfg.InfluxDB, cfg.Actuator.BaseURL)
		if err != nil {
			appLogger.Fatal("Failed to initialize InfluxDB reader: %v", err)
		}
		defer dbReader.Close()
		history = dbReader
		appLogger.Info("InfluxDB history enabled (bucket %s).", cfg.InfluxDB.Bucket)
	} else {
		appLogger.Info("InfluxDB not configured, history endpoint disabled.")
	}

	// --------- dashboard presenter ------------
	client := actuator.NewClient(cfg.Actuator.BaseURL, cfg.Actuator.Timeout)
	presenter := dashboard.New(ctx, client, opts)
	presenter.LoadAll()
	appLogger.Info("Loading dashboard data from %s", client.BaseURL())

	// ------- Initialize Gin ------------
	if !cfg.EnableDebugLog {
		gin.SetMode(gin.ReleaseMode)
		appLogger.Info("Gin set to ReleaseMode.")
	} else {
		gin.SetMode(gin.DebugMode)
		appLogger.Info("Gin set to DebugMode.")
	}

	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger())
	web.Mount(router)
	appLogger.Info("Gin engine initialized.")

	// ------ Setup Handlers and Routes -------
	api.NewDashboardHandler(presenter).RegisterDashboardRoutes(router)
	api.NewHistoryHandler(history).RegisterRoutes(router)
	appLogger.Info("Dashboard routes registered.")

	// ------- Start http Server --------
	srv := &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: api.Compress(router),

		ReadTimeout: 5 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		appLogger.Info("Starting dashboard on %s", cfg.ListenAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Could not listen on %s: %v", cfg.ListenAddress, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	appLogger.Info("Shutdown signal (%s) received. Shutting down server gracefully...", receivedSignal)

	// closes uptime streams so Shutdown does not wait on them
	presenter.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exiting.")
}
