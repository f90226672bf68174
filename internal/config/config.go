// Package config provides environment-driven configuration for the routing
// solver service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the top-level application configuration.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	API      APIConfig
	Solver   SolverConfig
	Matrix   MatrixConfig
	Metrics  MetricsConfig
}

// AppConfig holds process-wide basics.
type AppConfig struct {
	Name     string
	Env      string
	Port     int
	LogLevel string
}

// DatabaseConfig configures the Postgres-backed fixture store.
type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig configures the distance-matrix cache.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Addr returns the host:port address go-redis expects.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// APIConfig configures the HTTP surface wrapping solve().
type APIConfig struct {
	RateLimit int // requests per second, shared by all clients (one process-wide token bucket)
	Burst     int
	Timeout   time.Duration
	CORS      CORSConfig
}

// CORSConfig controls cross-origin access to the API.
type CORSConfig struct {
	Enabled bool
	Origins []string
}

// SolverConfig mirrors the recognized fields of SolveOptions.
type SolverConfig struct {
	TargetTimeWeight      int
	ReassignmentPenalty   int
	LocalSearchIterations int
}

// MatrixConfig selects and configures the distance matrix provider.
type MatrixConfig struct {
	Provider          string // "haversine" or "osrm"
	HaversineSpeedKMH float64
	OSRMBaseURL       string
	OSRMProfile       string
	OSRMTimeout       time.Duration
	CacheEnabled      bool
	CacheTTL          time.Duration
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// Load assembles configuration from environment variables with typed defaults.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:     getEnv("APP_NAME", "vrp-solver"),
			Env:      getEnv("APP_ENV", "development"),
			Port:     getEnvInt("APP_PORT", 7012),
			LogLevel: getEnv("APP_LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "vrp_solver"),
			User:            getEnv("DB_USER", "vrp_solver"),
			Password:        getEnv("DB_PASSWORD", "vrp_solver"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		API: APIConfig{
			RateLimit: getEnvInt("API_RATE_LIMIT", 20),
			Burst:     getEnvInt("API_RATE_BURST", 40),
			Timeout:   getEnvDuration("API_TIMEOUT", 30*time.Second),
			CORS: CORSConfig{
				Enabled: getEnvBool("API_CORS_ENABLED", true),
				Origins: []string{"*"},
			},
		},
		Solver: SolverConfig{
			TargetTimeWeight:      getEnvInt("SOLVER_TARGET_TIME_WEIGHT", 1),
			ReassignmentPenalty:   getEnvInt("SOLVER_REASSIGNMENT_PENALTY", 300),
			LocalSearchIterations: getEnvInt("SOLVER_LOCAL_SEARCH_ITERATIONS", 100),
		},
		Matrix: MatrixConfig{
			Provider:          getEnv("MATRIX_PROVIDER", "haversine"),
			HaversineSpeedKMH: getEnvFloat("MATRIX_HAVERSINE_SPEED_KMH", 40.0),
			OSRMBaseURL:       getEnv("MATRIX_OSRM_BASE_URL", "http://localhost:5000"),
			OSRMProfile:       getEnv("MATRIX_OSRM_PROFILE", "car"),
			OSRMTimeout:       getEnvDuration("MATRIX_OSRM_TIMEOUT", 10*time.Second),
			CacheEnabled:      getEnvBool("MATRIX_CACHE_ENABLED", false),
			CacheTTL:          getEnvDuration("MATRIX_CACHE_TTL", 15*time.Minute),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
	}

	return cfg, nil
}

func (c *Config) IsDevelopment() bool { return c.App.Env == "development" }
func (c *Config) IsProduction() bool  { return c.App.Env == "production" }
func (c *Config) IsTest() bool        { return c.App.Env == "test" }

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
