package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"soccer_v3/pipeline/internal/metrics"
)

// Database holds a database connection pool and provides access to repositories.
// The pipeline runs two of these: the primary prediction database and the
// optional winbets mirror, which carries the same tables.
type Database struct {
	Pool *pgxpool.Pool

	// Name labels the pool in logs and metrics ("primary", "winbets")
	Name string

	// Repositories
	Predictions      *PredictionRepository
	ModelPredictions *ModelPredictionRepository
	Features         *FeatureRepository
	Mappings         *MappingRepository
	Stats            *StatsRepository
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, name, dsn string) (*Database, error) {
	// Configure connection pool
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Set pool configuration
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	// Create connection pool
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("database", name).
		Str("dbname", poolConfig.ConnConfig.Database).
		Msg("Successfully connected to database")

	// Initialize database with repositories
	db := &Database{
		Pool: pool,
		Name: name,
	}

	// Initialize repositories
	db.Predictions = &PredictionRepository{db: db}
	db.ModelPredictions = &ModelPredictionRepository{db: db}
	db.Features = &FeatureRepository{db: db}
	db.Mappings = &MappingRepository{db: db}
	db.Stats = &StatsRepository{db: db}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Str("database", db.Name).Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// RecordPoolMetrics exports current pool counters to Prometheus.
// The worker calls this on its periodic status tick.
func (db *Database) RecordPoolMetrics() {
	stat := db.Pool.Stat()
	metrics.UpdateDBConnectionStats(db.Name, stat.AcquiredConns(), stat.IdleConns())
}
