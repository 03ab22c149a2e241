package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Jurgenvdlecq/seatemail/catalog"
	"github.com/Jurgenvdlecq/seatemail/config"
	"github.com/Jurgenvdlecq/seatemail/handler"
	"github.com/Jurgenvdlecq/seatemail/middleware"
	"github.com/Jurgenvdlecq/seatemail/pdftext"
	"github.com/Jurgenvdlecq/seatemail/pkg/logger"
	"github.com/Jurgenvdlecq/seatemail/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	log := logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "config", *configPath)

	stager, err := newStager(cfg)
	if err != nil {
		slog.Error("failed to initialize staging", "backend", cfg.Upload.Staging, "error", err)
		os.Exit(1)
	}

	converter, err := pdftext.New(&cfg.PDF, log)
	if err != nil {
		slog.Error("failed to initialize pdf engine", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := service.NewMetrics(registry)
	quoteSvc := service.NewQuoteService(stager, converter, metrics)

	// A missing price list is not fatal: lookups answer 404 until a reload works
	catalogStore := catalog.NewStore(cfg.Catalog.Path, log)
	if err := catalogStore.Reload(context.Background()); err != nil {
		slog.Warn("starting with an empty price list", "path", cfg.Catalog.Path)
	}

	var scheduler *catalog.Scheduler
	if cfg.Catalog.ReloadCron != "" {
		scheduler = catalog.NewScheduler(catalogStore, cfg.Catalog.ReloadCron, log)
		if err := scheduler.Start(); err != nil {
			slog.Error("invalid catalog reload schedule", "spec", cfg.Catalog.ReloadCron, "error", err)
			os.Exit(1)
		}
	}

	authHandler := handler.NewAuthHandler(cfg)
	quoteHandler := handler.NewQuoteHandler(quoteSvc, &cfg.Upload, cfg.Email)
	catalogHandler := handler.NewCatalogHandler(catalogStore)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware())
	router.Use(cacheMiddleware())
	// promhttp compresses /metrics itself
	router.Use(gzip.Gzip(gzip.BestSpeed, gzip.WithExcludedPaths([]string{"/metrics"})))
	router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"catalog":   catalogStore.Current().Len(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.POST("/verwerk-offerte", quoteHandler.Upload)
		protected.POST("/offerte/tekst", quoteHandler.Text)
		protected.POST("/offerte/email", quoteHandler.Email)
		protected.GET("/prijslijst", catalogHandler.List)
		protected.GET("/prijslijst/zoek", catalogHandler.Search)
		protected.POST("/prijslijst/herladen", catalogHandler.Reload)
	}

	// Everything else is the frontend
	slog.Info("serving static files", "directory", cfg.Server.StaticDir)
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(cfg.Server.StaticDir))))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "pdf_engine", cfg.PDF.Engine, "staging", cfg.Upload.Staging)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if scheduler != nil {
		select {
		case <-scheduler.Stop().Done():
		case <-ctx.Done():
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

func newStager(cfg *config.Config) (service.Stager, error) {
	if cfg.Upload.Staging != config.StagingMinio {
		return service.NewLocalStager(cfg.Upload.TempDir)
	}

	stager, err := service.NewMinioStager(&cfg.Minio)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := stager.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return stager, nil
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// cacheMiddleware sets cache control headers for static files
func cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// API answers and the price list change without a deploy
		if strings.HasPrefix(path, "/api") || strings.HasSuffix(path, ".json") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Next()
			return
		}

		if strings.HasSuffix(path, ".js") ||
			strings.HasSuffix(path, ".css") ||
			strings.HasSuffix(path, ".html") ||
			path == "/" {
			c.Header("Cache-Control", "public, max-age=3600, must-revalidate")
		}

		c.Next()
	}
}
