// Field-service routing solver
// Service entry point

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/paiban/paiban/internal/config"
	"github.com/paiban/paiban/internal/database"
	"github.com/paiban/paiban/internal/handler"
	"github.com/paiban/paiban/internal/metrics"
	"github.com/paiban/paiban/internal/middleware"
	"github.com/paiban/paiban/internal/repository"
	"github.com/paiban/paiban/internal/security"
	"github.com/paiban/paiban/internal/tenant"
	"github.com/paiban/paiban/pkg/logger"
	"github.com/paiban/paiban/pkg/scheduler/availability"
	"github.com/paiban/paiban/pkg/scheduler/matrix"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: consoleOrJSON(cfg),
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("routing solver starting")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Warn().Err(err).Msg("fixture store database unavailable, scenarios endpoint disabled")
	}

	matrixProvider := buildMatrixProvider(cfg)
	matrixCache := buildMatrixCache(cfg)
	availabilityProvider := availability.NewStaticProvider()

	apiKeyManager := security.NewAPIKeyManager()
	tenantManager := tenant.NewTenantManager()
	tenantManager.Register(tenant.CreateDefaultTenant())
	rateLimiter := security.NewRateLimiter(cfg.API.RateLimit, time.Second)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"vrp-solver"}`))
	})

	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "routing solver API v1",
			"endpoints": {
				"solve": "POST /api/v1/solve",
				"stats": "POST /api/v1/stats",
				"validate": "POST /api/v1/validate",
				"swap": "POST /api/v1/swap"
			}
		}`))
	})

	solveHandler := handler.NewSolveHandler(availabilityProvider, matrixProvider, matrixCache, cfg.Matrix.CacheTTL, cfg.API.Timeout)
	mux.HandleFunc("/api/v1/solve", solveHandler.Solve)

	statsHandler := handler.NewStatsHandler(matrixTravelFunc(matrixProvider))
	mux.HandleFunc("/api/v1/stats", statsHandler.Stats)
	mux.HandleFunc("/api/v1/validate", statsHandler.Validate)
	mux.HandleFunc("/api/v1/swap", statsHandler.Swap)

	if db != nil {
		fixtureHandler := handler.NewFixtureHandler(repository.NewFixtureStore(db.DB))
		mux.HandleFunc("PUT /api/v1/scenarios/{org}/{name}", func(w http.ResponseWriter, r *http.Request) {
			orgID, err := uuid.Parse(r.PathValue("org"))
			if err != nil {
				http.Error(w, `{"error":"INVALID_INPUT","message":"org must be a uuid"}`, http.StatusBadRequest)
				return
			}
			fixtureHandler.Save(w, r, orgID, r.PathValue("name"))
		})
		mux.HandleFunc("GET /api/v1/scenarios/{org}/{name}", func(w http.ResponseWriter, r *http.Request) {
			orgID, err := uuid.Parse(r.PathValue("org"))
			if err != nil {
				http.Error(w, `{"error":"INVALID_INPUT","message":"org must be a uuid"}`, http.StatusBadRequest)
				return
			}
			fixtureHandler.Get(w, r, orgID, r.PathValue("name"))
		})
	}

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	skipAuth := []string{"/health", "/version", cfg.Metrics.Path}
	if !cfg.IsProduction() {
		skipAuth = append(skipAuth, "/api/v1/")
	}
	authConfig := &middleware.AuthConfig{
		APIKeyManager:   apiKeyManager,
		TenantManager:   tenantManager,
		RateLimiter:     rateLimiter,
		SkipPaths:       skipAuth,
		EnableRateLimit: false, // golang.org/x/time/rate below covers global throttling
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.API.RateLimit), cfg.API.Burst)

	var chain http.Handler = mux
	chain = middleware.AuthMiddleware(authConfig)(chain)
	chain = tokenBucketMiddleware(limiter)(chain)
	if cfg.API.CORS.Enabled {
		chain = corsMiddleware(cfg.API.CORS)(chain)
	}
	chain = middleware.LoggingMiddleware(chain)
	chain = middleware.SecurityHeadersMiddleware(chain)
	chain = middleware.RecoveryMiddleware(chain)
	chain = middleware.RequestIDMiddleware(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      chain,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Str("matrix_provider", cfg.Matrix.Provider).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	if db != nil {
		db.Close()
	}

	logger.Info().Msg("server stopped")
}

func consoleOrJSON(cfg *config.Config) string {
	if cfg.IsProduction() {
		return "json"
	}
	return "console"
}

func buildMatrixProvider(cfg *config.Config) matrix.Provider {
	if cfg.Matrix.Provider == "osrm" {
		return matrix.NewOSRMProvider(matrix.OSRMConfig{
			BaseURL: cfg.Matrix.OSRMBaseURL,
			Profile: cfg.Matrix.OSRMProfile,
			Timeout: cfg.Matrix.OSRMTimeout,
		})
	}
	return matrix.NewHaversineProvider(cfg.Matrix.HaversineSpeedKMH)
}

func buildMatrixCache(cfg *config.Config) matrix.Cache {
	if !cfg.Matrix.CacheEnabled {
		return nil
	}
	return matrix.NewRedisCache(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
}

// matrixTravelFunc adapts a matrix.Provider into the single-pair TravelFunc
// the validator and swap packages want, for use outside a full solve() run.
// It rebuilds a 2x2 matrix per call, which is acceptable for the advisory
// endpoints that use it but would be wasteful inside the solver's hot path.
func matrixTravelFunc(provider matrix.Provider) func(a, b model.Location) float64 {
	return func(a, b model.Location) float64 {
		m, err := provider.Build(context.Background(), []model.Location{a, b})
		if err != nil || m.Size() < 2 {
			return 0
		}
		return m.Travel(0, 1)
	}
}

func tokenBucketMiddleware(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"RATE_LIMITED","message":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origin := "*"
	if len(cfg.Origins) > 0 {
		origin = cfg.Origins[0]
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
