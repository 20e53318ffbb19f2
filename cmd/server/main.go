package main

import (
	"alcyxob/workout-tracker/internal/api"
	"alcyxob/workout-tracker/internal/config"
	"alcyxob/workout-tracker/internal/metrics"
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/service"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
)

// @title Workout Tracker API
// @version 1.0
// @description Count sets, time rests between them and keep a history of finished workouts.
// @BasePath /api/v1
func main() {
	log.Info("Starting Workout Tracker...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("could not load config", "err", err)
	}
	logger := setupLogging(cfg.Log)
	logger.Info("configuration loaded", "driver", cfg.Storage.Driver, "key", cfg.Storage.Key)

	ctx := context.Background()

	// --- Storage ---
	kv, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("could not open storage", "driver", cfg.Storage.Driver, "err", err)
	}
	defer closeStore()

	// --- Metrics ---
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	// --- Services ---
	historyRepo := repository.NewHistoryRepository(kv, cfg.Storage.Key)
	historyService := service.NewHistoryService(historyRepo, recorder)
	if err := historyService.Load(ctx); err != nil {
		logger.Fatal("could not load workout history", "err", err)
	}

	loc, _ := cfg.Tracker.Location() // validated by LoadConfig
	trackerService := service.NewTrackerService(historyService, service.TrackerOptions{
		Clock:        clockwork.NewRealClock(),
		TickInterval: cfg.Tracker.TickInterval,
		DateLayout:   cfg.Tracker.DateLayout,
		Location:     loc,
		Recorder:     recorder,
	})

	// --- Router ---
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestIDMiddleware(), api.LoggerMiddleware(logger))

	templates, err := api.LoadTemplates()
	if err != nil {
		logger.Fatal("could not parse templates", "err", err)
	}
	routeOpts := api.RouteOptions{Templates: templates, MetricsPath: cfg.Metrics.Path}
	if cfg.Metrics.Enabled {
		routeOpts.MetricsHandler = metrics.HTTPHandler(registry)
	}
	api.SetupRoutes(router, trackerService, historyService, routeOpts)

	// --- Start HTTP Server ---
	// No WriteTimeout: the session event stream stays open.
	server := &http.Server{
		Addr:        cfg.Server.Address,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen and serve", "err", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	// Ends open event streams so Shutdown does not wait on them.
	trackerService.Close()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	logger.Info("server exiting")
}

func setupLogging(cfg config.LogConfig) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tracker",
	})
	if level, err := log.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unknown log level, using info", "level", cfg.Level)
	}
	switch cfg.Format {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}
	// package-level log calls in the services share this configuration
	log.SetDefault(logger)
	return logger
}

// openStore builds the key-value backend named by storage.driver. The returned
// func releases whatever the backend holds.
func openStore(ctx context.Context, cfg config.Config) (storage.KeyValueStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		kv, err := storage.NewFileStorage(afero.NewOsFs(), cfg.Storage.Path)
		return kv, func() {}, err

	case config.DriverMongo:
		client, err := mongo.ConnectDB(ctx, cfg.Database.URI)
		if err != nil {
			return nil, nil, err
		}
		log.Info("database connection established", "db", cfg.Database.Name)
		kv := mongo.NewMongoKVStore(client.Database(cfg.Database.Name), cfg.Database.Collection)
		return kv, func() {
			log.Info("disconnecting MongoDB...")
			if err := mongo.DisconnectDB(client); err != nil {
				log.Error("failed to disconnect MongoDB", "err", err)
			}
		}, nil

	case config.DriverS3:
		kv, err := storage.NewS3Storage(ctx, cfg.S3)
		return kv, func() {}, err

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
