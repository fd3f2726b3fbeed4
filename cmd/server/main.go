package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"github.com/ndewijer/Currency-Rate-Loader/internal/api"
	"github.com/ndewijer/Currency-Rate-Loader/internal/config"
	"github.com/ndewijer/Currency-Rate-Loader/internal/database"
	"github.com/ndewijer/Currency-Rate-Loader/internal/events"
	"github.com/ndewijer/Currency-Rate-Loader/internal/logging"
	"github.com/ndewijer/Currency-Rate-Loader/internal/metrics"
	"github.com/ndewijer/Currency-Rate-Loader/internal/provider"
	"github.com/ndewijer/Currency-Rate-Loader/internal/repository"
	"github.com/ndewijer/Currency-Rate-Loader/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("Failed to configure logging: %v", err)
	}

	// Open database connection
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
		logger.Fatalf("Failed to create database directory: %v", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	logger.WithField("path", cfg.Database.Path).Info("Connected to database")

	// Create repositories
	rateTypeRepo := repository.NewRateTypeRepository(db)
	rateRepo := repository.NewCurrencyRateRepository(db)

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		logger.Fatalf("Failed to register metrics: %v", err)
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				logger.WithError(err).Warn("Failed to close event publisher")
			}
		}()
		publisher = kafkaPublisher
		logger.WithFields(logrus.Fields{"brokers": cfg.Kafka.Brokers, "topic": cfg.Kafka.Topic}).Info("Publishing rate events")
	}

	transport := provider.NewHTTPTransport(cfg.Provider.HTTPTimeout)

	// Create services
	systemService := service.NewSystemService(db)
	rateTypeService := service.NewRateTypeService(rateTypeRepo, rateRepo)
	loaderService := service.NewRateLoaderService(
		rateTypeRepo,
		rateRepo,
		transport,
		publisher,
		m,
		logger,
	)

	var scheduler *service.SchedulerService
	if cfg.Scheduler.Enabled {
		scheduler = service.NewSchedulerService(rateTypeRepo, loaderService, cfg.Scheduler.Spec, cfg.Scheduler.Workers, logger)
		if err := scheduler.Start(); err != nil {
			logger.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	// Create router
	router := api.NewRouter(cfg, logger, reg, api.Services{
		System:   systemService,
		RateType: rateTypeService,
		Loader:   loaderService,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Manual runs wait for the upstream request.
		WriteTimeout: cfg.Provider.HTTPTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.WithField("addr", cfg.Server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Running cycles are cancelled before the server stops accepting requests.
	if scheduler != nil {
		scheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	// Cycles outlive the requests that started them.
	loaderService.Wait()

	logger.Info("Server exited")
}
