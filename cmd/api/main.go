package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/saturnino-fabrica-de-software/docverify/internal/api"
	"github.com/saturnino-fabrica-de-software/docverify/internal/audit"
	"github.com/saturnino-fabrica-de-software/docverify/internal/barcode"
	"github.com/saturnino-fabrica-de-software/docverify/internal/cache"
	"github.com/saturnino-fabrica-de-software/docverify/internal/config"
	"github.com/saturnino-fabrica-de-software/docverify/internal/database"
	"github.com/saturnino-fabrica-de-software/docverify/internal/liveness"
	"github.com/saturnino-fabrica-de-software/docverify/internal/metrics"
	"github.com/saturnino-fabrica-de-software/docverify/internal/ocr"
	"github.com/saturnino-fabrica-de-software/docverify/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/docverify/internal/quality"
	"github.com/saturnino-fabrica-de-software/docverify/internal/repository"
	"github.com/saturnino-fabrica-de-software/docverify/internal/rules"
	"github.com/saturnino-fabrica-de-software/docverify/internal/service"
	"github.com/saturnino-fabrica-de-software/docverify/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment, cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting DocVerify API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("ocr_provider", cfg.OCRProvider),
		slog.Bool("persistence", cfg.PersistenceEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditLogger := audit.NewSlogLogger(logger)
	m := metrics.New(prometheus.DefaultRegisterer)
	thresholds := cfg.Thresholds()

	// Country rules
	table := rules.DefaultTable()
	if cfg.CountryRulesFile != "" {
		table, err = rules.LoadFile(cfg.CountryRulesFile)
		if err != nil {
			return fmt.Errorf("failed to load country rules: %w", err)
		}
		logger.Info("country rules loaded", slog.String("file", cfg.CountryRulesFile))
	}

	// OCR
	extractor, err := ocr.NewTextExtractor(ctx, cfg, auditLogger)
	if err != nil {
		return fmt.Errorf("failed to create OCR provider: %w", err)
	}

	// Live event feed
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	opts := []service.Option{
		service.WithBarcodeScanner(barcode.NewScanner(logger)),
		service.WithEventPublisher(hub),
		service.WithMetrics(m),
		service.WithAuditLogger(auditLogger),
		service.WithLogger(logger),
	}
	deps := &api.Dependencies{
		Rules:          table,
		Gatherer:       prometheus.DefaultGatherer,
		Events:         hub,
		MaxUploadBytes: int64(cfg.MaxUploadBytes),
	}

	// Optional persistence
	if cfg.PersistenceEnabled() {
		if cfg.AutoMigrate {
			if err := database.MigrateUp(ctx, cfg.DatabaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			logger.Info("migrations applied")
		}

		pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		repo := repository.NewVerificationRepository(pool)
		opts = append(opts, service.WithRepository(repo))
		deps.DB = pool

		ocrCache := cache.NewPGCache(pool)
		if extractor != nil {
			extractor = ocr.NewCachedExtractor(extractor, ocrCache, cfg.OCRProvider, cfg.OCRCacheTTL, logger)
		}

		aggregator := metrics.NewAggregator(repo, m, logger, cfg.StatsInterval, cfg.RetentionPeriod).WithCleaner(ocrCache)
		go aggregator.Start(ctx)
		defer aggregator.Stop()
	}

	if extractor != nil {
		opts = append(opts, service.WithTextExtractor(extractor))
	}

	deps.Service = service.NewVerificationService(
		mock.New(mock.WithDelay(cfg.AnalysisDelay)),
		quality.NewAnalyzer(quality.Config{
			BlurVarianceThreshold:    thresholds.BlurVarianceThreshold,
			CropEdgeDensityThreshold: thresholds.CropEdgeDensityThreshold,
		}, logger),
		liveness.NewProber(liveness.Config{
			MotionSizeThresholdBytes: thresholds.MotionSizeThresholdBytes,
			Timeout:                  cfg.LivenessProbeTimeout,
		}, liveness.WithLogger(logger)),
		rules.NewValidator(table),
		opts...,
	)

	// Setup router
	router := api.NewRouter(logger, deps)
	router.Setup()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := router.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	logger.Info("server stopped")

	return nil
}
