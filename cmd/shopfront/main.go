package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopfront/internal/config"
	dbRedis "github.com/kailas-cloud/shopfront/internal/db/redis"
	logpkg "github.com/kailas-cloud/shopfront/internal/logger"
	"github.com/kailas-cloud/shopfront/internal/metrics"
	cartrepo "github.com/kailas-cloud/shopfront/internal/repository/cart"
	catalogrepo "github.com/kailas-cloud/shopfront/internal/repository/catalog"
	chiTransport "github.com/kailas-cloud/shopfront/internal/transport/chi"
	"github.com/kailas-cloud/shopfront/internal/transport/rest"
	cartuc "github.com/kailas-cloud/shopfront/internal/usecase/cart"
	healthuc "github.com/kailas-cloud/shopfront/internal/usecase/health"
	"github.com/kailas-cloud/shopfront/internal/usecase/listing"
	"github.com/kailas-cloud/shopfront/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shopfront API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("catalog_source", cfg.Catalog.Source),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterCatalogMetrics()

	// Local catalog: always serves categories, facets and product lookup.
	snap, err := catalogrepo.Load(cfg.Catalog.SeedFile)
	if err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}
	catalog := catalogrepo.New(snap,
		catalogrepo.WithLatency(time.Duration(cfg.Catalog.LatencyMS)*time.Millisecond),
		catalogrepo.WithLogger(logger),
	)
	logger.Info("Catalog loaded",
		zap.Int("products", len(snap.Products)),
		zap.Int("categories", len(snap.Categories)),
	)

	// Pass nil interfaces (not typed nil pointers) for components that cannot fail.
	var (
		cartPinger     healthuc.Pinger
		catalogChecker healthuc.CatalogChecker
		products       listing.Provider
	)

	switch cfg.Catalog.Source {
	case config.SourceUpstream:
		client, err := rest.New(rest.Config{
			BaseURL:        cfg.Upstream.BaseURL,
			TenantID:       cfg.Upstream.TenantID,
			Timeout:        time.Duration(cfg.Upstream.TimeoutSec) * time.Second,
			MaxRetries:     cfg.Upstream.MaxRetries,
			InitialBackoff: time.Duration(cfg.Upstream.InitialBackoffMS) * time.Millisecond,
			Logger:         logger,
		})
		if err != nil {
			logger.Fatal("Failed to create upstream catalog client", zap.Error(err))
		}
		products = listing.NewInstrumentedProvider(client, "upstream", logger)
		catalogChecker = client
	default:
		products = listing.NewInstrumentedProvider(catalog, "memory", logger)
	}

	// Cart backend based on driver
	var carts interface {
		ForSession(id string) cartuc.API
	}
	switch cfg.Database.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Database.Addrs,
			Password:   cfg.Database.Password,
			Standalone: cfg.Database.Standalone,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		// Wait for database to be ready
		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))

		carts = cartrepo.New(store, time.Duration(cfg.Cart.TTLMinutes)*time.Minute)
		cartPinger = store
	default:
		carts = cartrepo.NewMemory()
	}

	healthSvc := healthuc.New(cartPinger, catalogChecker)

	server := chiTransport.NewServer(products, catalog, carts, healthSvc, chiTransport.Config{
		DefaultPageSize: cfg.Catalog.DefaultPageSize,
		MaxPageSize:     cfg.Catalog.MaxPageSize,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
