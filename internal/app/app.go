// Package app wires configuration, storage, cache and services into one container
// shared by the API server and the operator CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/checkfix-tools/surveypulse_backend/internal/analytics"
	"github.com/checkfix-tools/surveypulse_backend/internal/cache"
	"github.com/checkfix-tools/surveypulse_backend/internal/config"
	"github.com/checkfix-tools/surveypulse_backend/internal/database"
	"github.com/checkfix-tools/surveypulse_backend/internal/logger"
	"github.com/checkfix-tools/surveypulse_backend/internal/repository"
	"github.com/checkfix-tools/surveypulse_backend/internal/services"
)

// memorySweepInterval is how often expired in-process cache entries are dropped
const memorySweepInterval = time.Minute

// App holds the long-lived dependencies of a process
type App struct {
	Config    *config.Config
	Log       *logger.Logger
	DB        *database.Client
	Cache     *cache.TieredCache
	Repos     repository.Repositories
	Refresher services.RefreshService
	Analytics services.AnalyticsService

	// Granularities is the parsed default granularity list
	Granularities []analytics.Granularity
}

// New connects to MongoDB and optionally Redis and builds the services.
// A Redis outage at startup leaves the process on the in-memory cache.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	granularities, err := analytics.ParseGranularities(cfg.DefaultGranularities)
	if err != nil {
		return nil, fmt.Errorf("failed to parse default granularities: %w", err)
	}

	dbCfg := database.DefaultConfig()
	dbCfg.URI = cfg.DatabaseURI
	dbCfg.Database = cfg.DatabaseName

	dbClient, err := database.NewClient(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	var primary cache.Cache
	if cfg.UsesRedis() {
		redisCache, redisErr := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if redisErr != nil {
			// #IMPLEMENTATION_DECISION: Caching is an optimization; never fail startup on it
			log.Warn("redis unavailable, using in-memory cache only", "addr", cfg.RedisAddr, "error", redisErr)
		} else {
			primary = redisCache
		}
	}
	tiered := cache.NewTieredCache(primary, cache.NewMemoryCache(memorySweepInterval), log)

	repos := repository.NewRepositories(dbClient)
	refresher := services.NewRefreshService(repos, tiered, log, services.RefreshConfig{
		Window:      cfg.RefreshWindow(),
		Concurrency: cfg.RefreshConcurrency,
	})
	analyticsService := services.NewAnalyticsService(repos, refresher, tiered, log, services.AnalyticsConfig{
		CacheTTL: cfg.CacheTTL,
		Window:   cfg.RefreshWindow(),
	})

	return &App{
		Config:        cfg,
		Log:           log,
		DB:            dbClient,
		Cache:         tiered,
		Repos:         repos,
		Refresher:     refresher,
		Analytics:     analyticsService,
		Granularities: granularities,
	}, nil
}

// Close releases the cache and database connections
func (a *App) Close(ctx context.Context) {
	if err := a.Cache.Close(); err != nil {
		a.Log.Warn("error closing cache", "error", err)
	}
	if err := a.DB.Close(ctx); err != nil {
		a.Log.Warn("error closing database connection", "error", err)
	}
}
