package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tax/internal/app"
	"github.com/noah-isme/backend-tax/internal/config"
	"github.com/noah-isme/backend-tax/internal/db"
	dbgen "github.com/noah-isme/backend-tax/internal/db/gen"
	"github.com/noah-isme/backend-tax/internal/health"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/ratelimit"
	"github.com/noah-isme/backend-tax/internal/resilience"
	"github.com/noah-isme/backend-tax/internal/tax"
	"github.com/noah-isme/backend-tax/internal/taxonomy"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.Obs.LogFormat, cfg.Obs.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	obs.MustRegisterDomainMetrics(cfg.Obs.MetricsNamespace, nil)

	tracingEnabled := cfg.Obs.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(context.Background(), obs.TracingConfig{
			ServiceName:   "tax-api",
			Endpoint:      cfg.Obs.OTLPEndpoint,
			Exporter:      cfg.Obs.TracingExporter,
			SamplingRatio: cfg.Obs.SamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, db.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		ApplicationName: "tax-api",
		MaxConns:        cfg.DBMaxConns,
		Tracing:         tracingEnabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	probes := []health.Probe{health.PingProbe("db", pool, 500*time.Millisecond)}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = openRedis(ctx, cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect redis")
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		probes = append(probes, health.Probe{
			Name:    "redis",
			Timeout: 300 * time.Millisecond,
			Check:   func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	} else {
		logger.Info().Msg("REDIS_URL not set; taxonomy cache and rate limiting disabled")
	}

	breaker := resilience.NewBreaker(5, 0.5, 30*time.Second).WithTarget("taxonomy_store").WithLogger(logger)
	taxonomySvc, err := taxonomy.NewService(taxonomy.ServiceConfig{
		Queries: dbgen.New(pool),
		Cache:   newCache(redisClient, cfg.TaxonomyCacheTTL),
		Guard: resilience.Guard{
			Target: "taxonomy_store",
			Policy: resilience.Policy{
				Attempts: cfg.StoreRetryAttempts + 1,
				Base:     cfg.StoreRetryBase,
				Jitter:   0.2,
				Timeout:  cfg.StoreTimeout,
			},
			Breaker: breaker,
		},
		Logger: logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise taxonomy service")
	}
	taxSvc, err := tax.NewService(tax.ServiceConfig{Taxonomy: taxonomySvc, Logger: logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise tax service")
	}

	deps := app.Dependencies{
		Logger:         logger,
		Taxonomy:       taxonomy.NewHandler(taxonomy.HandlerConfig{Service: taxonomySvc}),
		Tax:            tax.NewHandler(tax.HandlerConfig{Service: taxSvc}),
		Health:         health.Handler{Probes: probes},
		Tracing:        tracingEnabled,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		BodyLimitBytes: cfg.BodyLimitBytes,
		RequestTimeout: 15 * time.Second,
	}
	if cfg.Obs.MetricsEnabled {
		deps.HTTPMetrics = obs.NewHTTPMetrics(cfg.Obs.MetricsNamespace, obs.ParseBucketsCSV(cfg.Obs.MetricsBuckets), nil)
		deps.MetricsHandler = promhttp.Handler()
	}
	var computeLimiter ratelimit.Allower = ratelimit.NewMemoryLimiter("ratelimit", time.Minute)
	if redisClient != nil {
		computeLimiter = ratelimit.NewLimiter(redisClient, "ratelimit:")
	}
	deps.ComputeLimit = ratelimit.Handler{
		Limiter: computeLimiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("calculate-tax"),
			Window: time.Minute,
			Max:    cfg.ComputeRateLimit,
		},
		Logger: logger,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           app.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		serverErr <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}
}

func openRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if cfg.Obs.TracingEnabled {
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if cfg.Obs.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func newCache(client *redis.Client, ttl time.Duration) *taxonomy.Cache {
	if client == nil {
		return nil
	}
	return taxonomy.NewCache(client, ttl)
}
