package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/cache"
	"soccer_v3/pipeline/internal/client"
	"soccer_v3/pipeline/internal/config"
	"soccer_v3/pipeline/internal/metrics"
	"soccer_v3/pipeline/internal/repository"
	"soccer_v3/pipeline/internal/scheduler"
)

func main() {
	// Setup logger
	setupLogger()

	log.Info().Msg("Starting Soccer v3 Prediction Pipeline Worker")

	// Load configuration
	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	// Initialize database connection
	db, err := repository.NewDatabase(ctx, "primary", cfg.DatabaseDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("Database connection established")

	// Initialize Redis cache. The sweeps run without it, just slower.
	redisCache, err := cache.New(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		redisCache = nil
	} else {
		defer redisCache.Close()
		log.Info().Msg("Redis cache connected")
	}

	// Initialize provider clients
	footy := client.NewFootyStats(cfg.FootyStatsAPIKey, cfg.FootyStatsTimeout, cfg.FootyStatsRateLimit)
	footy.UseCache(redisCache,
		time.Duration(cfg.CacheTTLMatch)*time.Second,
		time.Duration(cfg.CacheTTLLeagueList)*time.Second)

	sports := client.NewAPISports(cfg.APISportsBaseURL, cfg.APISportsKey, cfg.APISportsTimeout, cfg.APISportsRateLimit)
	sports.UseCache(redisCache, time.Duration(cfg.CacheTTLTeams)*time.Second)

	mistral := client.NewMistral(cfg.MistralBaseURL, cfg.MistralAPIKey, cfg.MistralModel, cfg.MistralTimeout, cfg.MistralPacing)
	log.Info().Msg("Provider clients initialized")

	// Create the scheduler and wire the sweeps
	sched := scheduler.New()
	registerJobs(sched, cfg, db, footy, sports, mistral)

	if cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	} else {
		log.Warn().Msg("Scheduler disabled - worker serves HTTP only")
	}

	// Start the HTTP surface (/metrics, /healthz)
	go serveHTTP(cfg, db, redisCache)

	// Periodic status loop: uptime metric and pool gauges
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tick := time.Now()
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				db.RecordPoolMetrics()
				metrics.RecordWorkerIteration(time.Since(tick).Seconds())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Keep running until context is cancelled
	<-ctx.Done()

	// Graceful shutdown
	log.Info().Msg("Shutting down scheduler...")
	sched.Stop()

	log.Info().Msg("Worker shutdown complete")
}

// setupLogger configures the zerolog logger
func setupLogger() {
	// Pretty console logging in development
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	// Set log level
	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// serveHTTP runs the worker's HTTP surface: Prometheus metrics and a health
// endpoint reporting database and cache reachability.
func serveHTTP(cfg *config.Config, db *repository.Database, redisCache *cache.Cache) {
	mux := http.NewServeMux()

	if cfg.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		health := map[string]string{"status": "healthy"}

		if err := db.Health(r.Context()); err != nil {
			status = http.StatusServiceUnavailable
			health["status"] = "unhealthy"
			health["database"] = err.Error()
		} else {
			health["database"] = "ok"
		}

		// The cache is optional; its state never fails the check
		if err := redisCache.Health(r.Context()); err != nil {
			health["cache"] = "unavailable"
		} else {
			health["cache"] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(health)
	})

	addr := fmt.Sprintf(":%d", cfg.WorkerPort)
	log.Info().Str("addr", addr).Msg("Starting HTTP server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("HTTP server failed")
	}
}
