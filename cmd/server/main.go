package main

import (
	"context"
	"errors"
	"fmt"
	"ftareview/internal/cache"
	"ftareview/internal/catalogfile"
	"ftareview/internal/config"
	"ftareview/internal/logging"
	"ftareview/internal/metrics"
	"ftareview/internal/repository"
	"ftareview/internal/service"
	"ftareview/internal/transport/rest"
	"ftareview/internal/transport/ws"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// @title FTA Compliance Review API
// @version 1.0
// @description Applicability and level-of-effort planning for FTA compliance reviews
// @host localhost:8080
// @BasePath /api
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer mongoClient.Disconnect(context.Background())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDB))

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize repositories
	projectRepo := repository.NewProjectRepo(db)
	answerRepo := repository.NewAnswerRepo(db)
	applicabilityRepo := repository.NewApplicabilityRepo(db)
	if err := projectRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	var source service.CatalogSource = repository.NewCatalogRepo(db)
	if cfg.CatalogFile != "" {
		source = catalogfile.Source{Path: cfg.CatalogFile, Logger: logger}
		logger.Info("reading catalog from file", zap.String("path", cfg.CatalogFile))
	}

	// Initialize services
	catalogSvc := service.NewCatalogService(source, m, logger)
	if _, err := catalogSvc.Reload(ctx); err != nil {
		return err
	}
	assessmentSvc := service.NewAssessmentService(catalogSvc, cfg.SectionOrder, m, logger)
	projectSvc := service.NewProjectService(
		projectRepo,
		answerRepo,
		applicabilityRepo,
		cache.NewAssessmentCache(rdb, cfg.CacheTTL),
		catalogSvc,
		assessmentSvc,
		logger,
	)

	// Initialize WebSocket hub (implements service.Broadcaster)
	wsHub := ws.NewHub(logger)
	defer wsHub.Close()
	catalogSvc.SetBroadcaster(wsHub)
	projectSvc.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		CatalogService:    catalogSvc,
		AssessmentService: assessmentSvc,
		ProjectService:    projectSvc,
		WSHub:             wsHub,
		Gatherer:          reg,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		AllowedMethods:    cfg.CORSAllowedMethods,
		AllowedHeaders:    cfg.CORSAllowedHeaders,
		Logger:            logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
