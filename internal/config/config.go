package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// FootyStats API (match results, league list)
	FootyStatsAPIKey    string        `envconfig:"FOOTYSTATS_API_KEY" required:"true"`
	FootyStatsTimeout   time.Duration `envconfig:"FOOTYSTATS_TIMEOUT" default:"30s"`
	FootyStatsRateLimit float64       `envconfig:"FOOTYSTATS_RATE_LIMIT" default:"3"`

	// API-Sports (team and fixture mapping)
	APISportsKey       string        `envconfig:"APISPORTS_API_KEY" default:""`
	APISportsBaseURL   string        `envconfig:"APISPORTS_BASE_URL" default:"https://v3.football.api-sports.io"`
	APISportsTimeout   time.Duration `envconfig:"APISPORTS_TIMEOUT" default:"30s"`
	APISportsRateLimit float64       `envconfig:"APISPORTS_RATE_LIMIT" default:"3"`
	APISportsSeason    int           `envconfig:"APISPORTS_SEASON" default:"2026"`

	// Mistral (LLM advisor)
	MistralAPIKey  string        `envconfig:"MISTRAL_API_KEY" default:""`
	MistralBaseURL string        `envconfig:"MISTRAL_BASE_URL" default:"https://api.mistral.ai"`
	MistralModel   string        `envconfig:"MISTRAL_MODEL" default:"mistral-large-latest"`
	MistralTimeout time.Duration `envconfig:"MISTRAL_TIMEOUT" default:"60s"`
	MistralPacing  time.Duration `envconfig:"MISTRAL_PACING" default:"3s"`

	// Primary database
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBName     string `envconfig:"DB_NAME" default:"soccer_v3"`
	DBUser     string `envconfig:"DB_USER" default:"soccer_user"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`

	// Winbets mirror database
	WinbetsDBEnabled  bool   `envconfig:"WINBETS_DB_ENABLED" default:"true"`
	WinbetsDBHost     string `envconfig:"WINBETS_DB_HOST" default:"localhost"`
	WinbetsDBPort     int    `envconfig:"WINBETS_DB_PORT" default:"5432"`
	WinbetsDBName     string `envconfig:"WINBETS_DB_NAME" default:"winbets"`
	WinbetsDBUser     string `envconfig:"WINBETS_DB_USER" default:"winbets_user"`
	WinbetsDBPassword string `envconfig:"WINBETS_DB_PASSWORD" default:""`
	WinbetsDBSSLMode  string `envconfig:"WINBETS_DB_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Worker HTTP surface (/metrics, /healthz)
	WorkerPort int `envconfig:"WORKER_PORT" default:"9090"`

	// Scheduler
	EnableScheduler           bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	GradeSweepCron            string        `envconfig:"GRADE_SWEEP_CRON" default:"*/30 * * * *"`
	AdvisorSweepCron          string        `envconfig:"ADVISOR_SWEEP_CRON" default:"0 * * * *"`
	TeamSyncCron              string        `envconfig:"TEAM_SYNC_CRON" default:"0 4 * * *"`
	MatchSyncCron             string        `envconfig:"MATCH_SYNC_CRON" default:"0 5 * * *"`
	SettlementCron            string        `envconfig:"SETTLEMENT_CRON" default:"0 8 * * *"`
	SettlementCatchupInterval time.Duration `envconfig:"SETTLEMENT_CATCHUP_INTERVAL" default:"6h"`

	// Feature flags
	EnableGrading    bool `envconfig:"ENABLE_GRADING" default:"true"`
	EnableAdvisor    bool `envconfig:"ENABLE_ADVISOR" default:"true"`
	EnableMapping    bool `envconfig:"ENABLE_MAPPING" default:"true"`
	EnableSettlement bool `envconfig:"ENABLE_SETTLEMENT" default:"true"`

	// Advisor limits
	AdvisorMaxMatches int `envconfig:"ADVISOR_MAX_MATCHES" default:"20"`

	// Caching TTL (in seconds)
	CacheTTLMatch      int `envconfig:"CACHE_TTL_MATCH" default:"600"`         // 10 minutes
	CacheTTLTeams      int `envconfig:"CACHE_TTL_TEAMS" default:"3600"`        // 1 hour
	CacheTTLLeagueList int `envconfig:"CACHE_TTL_LEAGUE_LIST" default:"86400"` // 24 hours

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.FootyStatsAPIKey == "" {
		return fmt.Errorf("FOOTYSTATS_API_KEY is required")
	}

	if c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	if c.WinbetsDBEnabled && c.WinbetsDBPassword == "" && c.IsProduction() {
		return fmt.Errorf("WINBETS_DB_PASSWORD is required when the mirror database is enabled")
	}

	return nil
}

// DatabaseDSN returns the primary PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost,
		c.DBPort,
		c.DBUser,
		c.DBPassword,
		c.DBName,
		c.DBSSLMode,
	)
}

// WinbetsDSN returns the mirror PostgreSQL connection string
func (c *Config) WinbetsDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.WinbetsDBHost,
		c.WinbetsDBPort,
		c.WinbetsDBUser,
		c.WinbetsDBPassword,
		c.WinbetsDBName,
		c.WinbetsDBSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
