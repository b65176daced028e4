package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	DBMaxConns         int32
	StoreTimeout       time.Duration
	StoreRetryAttempts int
	StoreRetryBase     time.Duration
	RedisURL           string
	TaxonomyCacheTTL   time.Duration
	CORSAllowedOrigins []string
	BodyLimitBytes     int64
	ComputeRateLimit   int
	Obs                Obs
}

// Obs groups logging, metrics and tracing settings.
type Obs struct {
	LogFormat        string
	LogLevel         string
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string
	TracingEnabled   bool
	TracingExporter  string
	OTLPEndpoint     string
	SamplingRatio    float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "5000"),
		DatabaseURL:        strings.TrimSpace(k.String("DATABASE_URL")),
		DBMaxConns:         int32(parseInt(k.String("DB_MAX_CONNS"), 10)),
		StoreTimeout:       parseDuration(k.String("STORE_TIMEOUT"), "2s"),
		StoreRetryAttempts: parseInt(k.String("STORE_RETRY_ATTEMPTS"), 2),
		StoreRetryBase:     parseDuration(k.String("STORE_RETRY_BASE"), "50ms"),
		RedisURL:           strings.TrimSpace(k.String("REDIS_URL")),
		TaxonomyCacheTTL:   parseDuration(k.String("TAXONOMY_CACHE_TTL"), "10m"),
		CORSAllowedOrigins: splitAndTrim(valueOrDefault(k.String("CORS_ALLOWED_ORIGINS"), "*")),
		BodyLimitBytes:     int64(parseInt(k.String("BODY_LIMIT_BYTES"), 16384)),
		ComputeRateLimit:   parseInt(k.String("RATE_LIMIT_COMPUTE_PER_MIN"), 120),
		Obs: Obs{
			LogFormat:        valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
			LogLevel:         valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
			MetricsEnabled:   parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
			MetricsNamespace: valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "tax"),
			MetricsBuckets:   k.String("OBS_METRICS_BUCKETS_MS"),
			TracingEnabled:   parseBool(k.String("OBS_ENABLE_TRACING"), false),
			TracingExporter:  valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "otlp"),
			OTLPEndpoint:     strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
			SamplingRatio:    parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
		},
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = buildDatabaseURL(k)
	}
	if cfg.DBMaxConns <= 0 {
		return nil, errors.New("DB_MAX_CONNS must be positive")
	}
	if cfg.StoreRetryAttempts < 0 {
		return nil, errors.New("STORE_RETRY_ATTEMPTS must not be negative")
	}
	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "5000"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// buildDatabaseURL assembles a DSN from the discrete DB_* variables.
func buildDatabaseURL(k *koanf.Koanf) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(valueOrDefault(k.String("DB_USER"), "postgres"), valueOrDefault(k.String("DB_PASSWORD"), "postgres")),
		Host:     net.JoinHostPort(valueOrDefault(k.String("DB_HOST"), "localhost"), valueOrDefault(k.String("DB_PORT"), "5432")),
		Path:     "/" + valueOrDefault(k.String("DB_NAME"), "tax_calculator"),
		RawQuery: "sslmode=" + valueOrDefault(k.String("DB_SSLMODE"), "disable"),
	}
	return u.String()
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
