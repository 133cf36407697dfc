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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/facetdex/internal/config"
	"github.com/kailas-cloud/facetdex/internal/db/elastic"
	logpkg "github.com/kailas-cloud/facetdex/internal/logger"
	"github.com/kailas-cloud/facetdex/internal/metrics"
	searchrepo "github.com/kailas-cloud/facetdex/internal/repository/search"
	chiTransport "github.com/kailas-cloud/facetdex/internal/transport/chi"
	exploreuc "github.com/kailas-cloud/facetdex/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/facetdex/internal/usecase/health"
	"github.com/kailas-cloud/facetdex/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting facetdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addresses", cfg.Elasticsearch.Addresses),
		zap.String("index", cfg.Elasticsearch.Index),
	)

	facets, err := cfg.FacetTable()
	if err != nil {
		logger.Fatal("Invalid facet table", zap.Error(err))
	}

	store, err := elastic.NewStore(elastic.Config{
		Addresses:      cfg.Elasticsearch.Addresses,
		RequestTimeout: cfg.Elasticsearch.RequestTimeout(),
	})
	if err != nil {
		logger.Fatal("Failed to create search engine client", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, cfg.Elasticsearch.ReadinessTimeoutDuration()); err != nil {
		logger.Fatal("Search engine not ready", zap.Error(err))
	}
	logger.Info("Connected to search engine")

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	repo := exploreuc.NewInstrumentedRepository(searchrepo.New(store), logger)
	exploreSvc, err := exploreuc.New(repo, exploreuc.Config{
		Index:        cfg.Elasticsearch.Index,
		Facets:       facets,
		DefaultLimit: cfg.Search.DefaultLimit,
		DefaultTopN:  cfg.Search.DefaultTopN,
		TextFields:   cfg.Search.TextFields,
		Cardinality:  cfg.Cardinality,
	})
	if err != nil {
		logger.Fatal("Failed to create explore service", zap.Error(err))
	}
	healthSvc := healthuc.New(store)

	server := chiTransport.NewServer(exploreSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.Recoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEvent(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
