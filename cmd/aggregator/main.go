// Package main is the entry point for the finding aggregator.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lvonguyen/secfindings/internal/adapter"
	"github.com/lvonguyen/secfindings/internal/adapter/adapters"
	"github.com/lvonguyen/secfindings/internal/config"
	"github.com/lvonguyen/secfindings/internal/finding"
	"github.com/lvonguyen/secfindings/internal/observability"
	"github.com/lvonguyen/secfindings/internal/pipeline"
	"github.com/lvonguyen/secfindings/internal/schema"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Starting finding aggregator",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port),
	)

	telemetry, err := observability.New(observability.Config{
		ServiceName:    "secfindings",
		ServiceVersion: "1.0.0",
		LogLevel:       "info",
		MetricsEnabled: true,
	})
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetry.Shutdown(context.Background())

	// Adapter registry: only the built-in adapters are registered.
	// cfg.Adapter.DevDir is not read, and no adapters are loaded from a
	// directory.
	registry := adapter.NewRegistry(logger)
	for _, a := range adapters.All() {
		registry.Register(a)
	}
	logger.Info("registered built-in adapters", zap.Int("count", registry.Len()))

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	}
	cache := adapter.NewParseCache(rdb, logger)

	var validator *schema.Validator
	if cfg.Schema.Enabled {
		validator, err = schema.NewValidator()
		if err != nil {
			logger.Warn("schema validator unavailable, running without it", zap.Error(err))
			validator = nil
		}
	}

	agg := pipeline.New(registry, cache, validator, logger, telemetry.Tracer(), telemetry.Metrics(), pipeline.Config{
		WorkerCount:      cfg.Core.WorkerCount,
		MaxFileSizeBytes: cfg.Core.MaxFileSizeBytes,
		MaxJSONDepth:     cfg.Core.MaxJSONDepth,
	})

	health := observability.NewHealthChecker(logger, telemetry)
	health.RegisterResultsRootCheck(cfg.Core.ResultsRoot)
	health.RegisterRegistryCheck(registry.Len)
	health.RegisterRedisCheck(redisPinger(rdb))

	server := newServer(agg, cfg, logger, telemetry, health)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	telemetry.StartSystemMetricsCollector(ctx)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.router,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	logger.Info("finding aggregator started successfully",
		zap.String("api_url", fmt.Sprintf("http://localhost:%d", cfg.Server.Port)),
	)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	cancel()
	logger.Info("finding aggregator stopped")
}

func redisPinger(rdb *redis.Client) func(ctx context.Context) error {
	if rdb == nil {
		return nil
	}
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

// server wires the aggregation pipeline to HTTP endpoints, mirroring the
// teacher's setupRoutes shape: POST /scan runs the pipeline over a results
// root, GET /findings returns the last run's findings, GET /healthz and
// GET /metrics expose operational state.
type server struct {
	router *gin.Engine

	mu           sync.RWMutex
	lastFindings []finding.Finding
	lastRunID    string
}

func newServer(agg *pipeline.Pipeline, cfg *config.Config, logger *zap.Logger, telemetry *observability.Telemetry, health *observability.HealthChecker) *server {
	s := &server{}
	router := gin.Default()

	router.POST("/scan", func(c *gin.Context) {
		root := c.Query("root")
		if root == "" {
			root = cfg.Core.ResultsRoot
		}
		if root == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no results root configured or provided"})
			return
		}

		result, err := agg.Run(c.Request.Context(), root)
		if err != nil {
			logger.Error("scan failed", zap.Error(err), zap.String("root", root))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		s.mu.Lock()
		s.lastFindings = result.Findings
		s.lastRunID = result.RunID
		s.mu.Unlock()

		c.Header("X-Run-Id", result.RunID)
		c.JSON(http.StatusOK, gin.H{
			"runId":     result.RunID,
			"cancelled": result.Cancelled,
			"count":     len(result.Findings),
			"findings":  result.Findings,
		})
	})

	router.GET("/findings", func(c *gin.Context) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		c.Header("X-Run-Id", s.lastRunID)
		c.JSON(http.StatusOK, gin.H{
			"runId":    s.lastRunID,
			"count":    len(s.lastFindings),
			"findings": s.lastFindings,
		})
	})

	router.GET("/healthz", gin.WrapF(health.HealthHandler()))
	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	logger.Info("API routes configured")
	s.router = router
	return s
}
