// Package main is the entry point for the bank registry server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sefa-b/bank-registry/internal/api/middleware"
	v1 "github.com/sefa-b/bank-registry/internal/api/v1"
	"github.com/sefa-b/bank-registry/internal/config"
	"github.com/sefa-b/bank-registry/internal/repository"
	"github.com/sefa-b/bank-registry/internal/service"
	"github.com/sefa-b/bank-registry/internal/utils"
	"github.com/sefa-b/bank-registry/internal/worker"
)

const serviceName = "bank-registry"

func main() {
	cfg := config.Load()

	// Initialize structured logger
	utils.InitLogger(cfg.Environment, serviceName)

	metricsCollector := utils.NewMetricsCollector()

	ctx := context.Background()
	shutdownTracer, err := utils.InitTracer(ctx, serviceName, "1.0.0", cfg.OTLPEndpoint)
	if err != nil {
		utils.Error("failed to initialize tracer", "error", err.Error())
		os.Exit(1)
	}
	defer shutdownTracer()

	if cfg.DBUrl == "" {
		utils.Error("DB_URL is required")
		os.Exit(1)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := repository.Connect(connectCtx, cfg.DBUrl, cfg.DBMaxConns)
	cancel()
	if err != nil {
		utils.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Migrate {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := repository.RunMigrations(migrateCtx, db.Pool)
		cancel()
		if err != nil {
			utils.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	// Redis is optional; without it requests are not rate limited
	var limiter service.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient, err := repository.NewRedisClient(repository.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			utils.Warn("failed to connect to Redis, running without rate limiting", slog.String("error", err.Error()))
		} else {
			defer redisClient.Close()
			limiter = service.NewRateLimiter(redisClient)
		}
	}

	trustedProxies, err := middleware.ParseTrustedProxies(splitList(cfg.TrustedProxies))
	if err != nil {
		utils.Error("invalid TRUSTED_PROXIES", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)

	// Audit entries are written off the request path
	jobQueue := worker.NewJobQueue(100)
	workerPool := worker.NewPool(jobQueue, repos.Audit, metricsCollector)
	metricsCollector.SetQueueDepth(0)

	bankService := service.NewBankService(repos, workerPool, metricsCollector)

	router := v1.NewRouter(v1.Deps{
		Banks:          bankService,
		Metrics:        metricsCollector,
		Limiter:        limiter,
		Pool:           workerPool,
		RateLimitRPM:   cfg.RateLimitRPM,
		AllowedOrigins: splitList(cfg.AllowedOrigins),
		TrustedProxies: trustedProxies,
		ServiceName:    serviceName,
	})

	server := &http.Server{
		Addr:              cfg.GetAddr(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	workerPool.Start(cfg.AuditWorkers)

	go func() {
		utils.Info("server starting",
			slog.String("addr", cfg.GetAddr()),
			slog.String("env", cfg.Environment),
		)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Error("server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-quit
	utils.Info("shutting down server")

	// Stop accepting requests first so no new audit jobs arrive
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	shutdownCancel()

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := workerPool.Stop(poolCtx); err != nil {
		utils.Error("worker pool shutdown error", slog.String("error", err.Error()))
	}
	poolCancel()

	utils.Info("server stopped gracefully")
}

// splitList splits a comma separated environment value.
func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
