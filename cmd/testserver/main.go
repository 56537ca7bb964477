package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	appLogger "github.com/4Noyis/actuator-dashboard/internal/logger"
	"github.com/4Noyis/actuator-dashboard/internal/server/config"
	"github.com/4Noyis/actuator-dashboard/internal/stats"
	"github.com/gin-gonic/gin"
)

// Stub management backend: actuator endpoints from live host statistics plus
// demo endpoints that are called periodically so the trace list has content.

const trafficInterval = 2 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.EnableDebugLog {
		appLogger.SetDebug(true)
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	repo := stats.NewTraceRepository(stats.DefaultTraceCapacity)
	router := gin.New()
	router.Use(gin.Recovery(), repo.Middleware())
	stats.NewBackendHandler(repo, stats.BackendOptions{}).RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.TestServerAddress,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		appLogger.Info("Starting test backend on %s", cfg.TestServerAddress)
		appLogger.Info("Actuator endpoints under http://%s/actuator", localAddress(cfg.TestServerAddress))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Could not listen on %s: %v", cfg.TestServerAddress, err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go generateTraffic(ctx, "http://"+localAddress(cfg.TestServerAddress))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	appLogger.Info("Shutdown signal (%s) received. Stopping test backend...", receivedSignal)
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Test backend forced to shutdown: %v", err)
	}
	appLogger.Info("Test backend stopped.")
}

func localAddress(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}

// generateTraffic calls a random demo endpoint every trafficInterval.
func generateTraffic(ctx context.Context, baseURL string) {
	client := &http.Client{Timeout: 5 * time.Second}
	ticker := time.NewTicker(trafficInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			path := stats.DemoPaths[rand.Intn(len(stats.DemoPaths))]
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
			if err != nil {
				appLogger.Error("Error creating demo request: %v", err)
				continue
			}
			resp, err := client.Do(req)
			if err != nil {
				if ctx.Err() == nil {
					appLogger.Warn("Demo request to %s failed: %v", path, err)
				}
				continue
			}
			resp.Body.Close()
			appLogger.Debug("Demo request %s -> %s", path, resp.Status)
		}
	}
}
