package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tax/internal/config"
	"github.com/noah-isme/backend-tax/internal/db"
	dbgen "github.com/noah-isme/backend-tax/internal/db/gen"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/resilience"
	"github.com/noah-isme/backend-tax/internal/tax"
	"github.com/noah-isme/backend-tax/internal/taxonomy"
)

// defaultBackend connects to the database named by the environment. The cache
// is bypassed so the CLI always reads what is stored.
func defaultBackend() backend {
	open := func(ctx context.Context) (*taxonomy.Service, zerolog.Logger, func(), error) {
		_ = godotenv.Load()
		cfg, err := config.Load()
		if err != nil {
			return nil, zerolog.Logger{}, nil, err
		}
		logger := obs.NewLogger("console", cfg.Obs.LogLevel)
		pool, err := db.NewPool(ctx, db.PoolConfig{
			DatabaseURL:     cfg.DatabaseURL,
			ApplicationName: "taxctl",
			MaxConns:        2,
		})
		if err != nil {
			return nil, logger, nil, err
		}
		svc, err := taxonomy.NewService(taxonomy.ServiceConfig{
			Queries: dbgen.New(pool),
			Guard: resilience.Guard{Policy: resilience.Policy{
				Attempts: cfg.StoreRetryAttempts + 1,
				Base:     cfg.StoreRetryBase,
				Timeout:  cfg.StoreTimeout,
			}},
			Logger: logger,
		})
		if err != nil {
			pool.Close()
			return nil, logger, nil, err
		}
		return svc, logger, pool.Close, nil
	}

	return backend{
		taxonomy: func(ctx context.Context) (treeLister, func(), error) {
			svc, _, closeFn, err := open(ctx)
			if err != nil {
				return nil, nil, err
			}
			return svc, closeFn, nil
		},
		calculator: func(ctx context.Context) (calculator, func(), error) {
			svc, logger, closeFn, err := open(ctx)
			if err != nil {
				return nil, nil, err
			}
			calc, err := tax.NewService(tax.ServiceConfig{Taxonomy: svc, Logger: logger})
			if err != nil {
				closeFn()
				return nil, nil, err
			}
			return calc, closeFn, nil
		},
		flushCache: func(ctx context.Context) (int, error) {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return 0, err
			}
			if cfg.RedisURL == "" {
				return 0, errors.New("REDIS_URL is not set")
			}
			opts, err := redis.ParseURL(cfg.RedisURL)
			if err != nil {
				return 0, err
			}
			client := redis.NewClient(opts)
			defer client.Close()
			return taxonomy.NewCache(client, cfg.TaxonomyCacheTTL).Flush(ctx)
		},
	}
}
