package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bynikesh/findmyai-sub001/internal/config"
	"github.com/bynikesh/findmyai-sub001/internal/container"
	"github.com/bynikesh/findmyai-sub001/internal/handlers"
	"github.com/bynikesh/findmyai-sub001/internal/logger"
	"github.com/bynikesh/findmyai-sub001/internal/middleware"
	"github.com/bynikesh/findmyai-sub001/internal/trending"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger is not up yet
		_, _ = os.Stderr.WriteString("invalid configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Close()

	logger.Log.Info("=== FindMyAI backend starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("database", cfg.Database.Driver),
	)

	ctx := context.Background()
	c, err := container.Build(ctx, cfg)
	if err != nil {
		c.Cleanup(ctx)
		logger.FatalWithFields("Failed to build services", err)
	}

	h := handlers.NewHandlers(c.Repository(), c.Auth())
	h.SetSearchService(c.Search())
	h.SetTrendingCalculator(c.Trending())
	h.SetImporter(c.Importer())
	h.SetEnricher(c.Enricher())
	h.SetCache(c.Cache())

	// new scores reorder the public listings
	c.Trending().OnComplete = func(ctx context.Context, _ *trending.Summary) {
		h.InvalidateListings(ctx)
	}

	if cfg.Trending.Enabled {
		scheduler := trending.NewScheduler(c.Trending(), cfg.Trending.Interval)
		scheduler.Start()
		c.OnCleanup(func(context.Context) error {
			scheduler.Stop()
			return nil
		})
		logger.Log.Info("Trending scheduler started", zap.Duration("interval", cfg.Trending.Interval))
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingMiddleware(container.ServiceName)...)
	}

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) == 0 || cfg.Server.CORSOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	r.Use(cors.New(corsConfig))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.RegisterRoutes(r, c.Auth())

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("FindMyAI backend listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// a running import would otherwise hold the lock until its TTL
	if runID, stopped := c.Importer().Stop(); stopped {
		logger.Log.Info("Stopped active import run", logger.WithRunID(runID))
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	c.Cleanup(shutdownCtx)

	logger.Log.Info("Server exited")
}
