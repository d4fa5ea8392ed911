package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/adminpanel/internal/domain"
)

// Idempotency backends.
const (
	IdempotencyPostgres = "postgres"
	IdempotencyRedis    = "redis"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Server      ServerConfig
	Idempotency IdempotencyConfig
	Purge       PurgeConfig
	Admin       AdminConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
	Telemetry   TelemetryConfig
	SelfHosted  bool
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds identity token settings.
type JWTConfig struct {
	Secret    string //nolint:gosec // G117: JWT signing secret config
	AccessTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

// IdempotencyConfig selects where idempotency records are stored.
type IdempotencyConfig struct {
	Backend string
}

// PurgeConfig tunes user deletion. Empty Partitions and UploadPrefix fall back
// to the purge package defaults.
type PurgeConfig struct {
	PageSize     int
	Partitions   []domain.Partition
	UploadPrefix string
}

// AdminConfig holds administrator bootstrap settings. An empty
// BootstrapSecret disables the create-admin endpoint.
type AdminConfig struct {
	BootstrapSecret string //nolint:gosec // G117: bootstrap secret config
}

// RateLimitConfig holds token bucket settings. API limits apply per admin,
// auth limits per client IP.
type RateLimitConfig struct {
	APIRPS    float64
	APIBurst  int
	AuthRPS   float64
	AuthBurst int
}

// LogConfig holds zerolog settings.
type LogConfig struct {
	Level  string
	Format string
}

// TelemetryConfig controls the Prometheus endpoint and OTLP trace export.
// An empty OTLPEndpoint disables tracing.
type TelemetryConfig struct {
	MetricsEnabled bool
	OTLPEndpoint   string
	OTLPInsecure   bool
	Environment    string
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	dbPort, err := getEnvInt("ADMINPANEL_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	dbMaxConns, err := getEnvInt("ADMINPANEL_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("ADMINPANEL_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("ADMINPANEL_JWT_ACCESS_TTL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("ADMINPANEL_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	// Purges of heavy users run inside the request.
	writeTimeout, err := getEnvDuration("ADMINPANEL_SERVER_WRITE_TIMEOUT", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	selfHosted, err := getEnvBool("ADMINPANEL_SELF_HOSTED", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	pageSize, err := getEnvInt("ADMINPANEL_PURGE_PAGE_SIZE", 300)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	partitions, err := parsePartitions("ADMINPANEL_PURGE_PARTITIONS", getEnvList("ADMINPANEL_PURGE_PARTITIONS", nil))
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	apiRPS, err := getEnvFloat("ADMINPANEL_RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	apiBurst, err := getEnvInt("ADMINPANEL_RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	authRPS, err := getEnvFloat("ADMINPANEL_AUTH_RATE_LIMIT_RPS", 1)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	authBurst, err := getEnvInt("ADMINPANEL_AUTH_RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	metricsEnabled, err := getEnvBool("ADMINPANEL_METRICS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	otlpInsecure, err := getEnvBool("ADMINPANEL_OTLP_INSECURE", false)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("ADMINPANEL_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("ADMINPANEL_DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("ADMINPANEL_DB_USER", "adminpanel"),
			Password: getEnv("ADMINPANEL_DB_PASSWORD", ""),
			DBName:   getEnv("ADMINPANEL_DB_NAME", "adminpanel_dev"),
			SSLMode:  getEnv("ADMINPANEL_DB_SSLMODE", "disable"),
			MaxConns: dbMaxConns,
		},
		Redis: RedisConfig{
			Addr:     getEnv("ADMINPANEL_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("ADMINPANEL_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:    getEnv("ADMINPANEL_JWT_SECRET", ""),
			AccessTTL: accessTTL,
		},
		Server: ServerConfig{
			Addr:         getEnv("ADMINPANEL_SERVER_ADDR", ":8080"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
		},
		Idempotency: IdempotencyConfig{
			Backend: strings.ToLower(getEnv("ADMINPANEL_IDEMPOTENCY_BACKEND", IdempotencyPostgres)),
		},
		Purge: PurgeConfig{
			PageSize:     pageSize,
			Partitions:   partitions,
			UploadPrefix: getEnv("ADMINPANEL_PURGE_UPLOAD_PREFIX", ""),
		},
		Admin: AdminConfig{
			BootstrapSecret: getEnv("ADMINPANEL_ADMIN_BOOTSTRAP_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			APIRPS:    apiRPS,
			APIBurst:  apiBurst,
			AuthRPS:   authRPS,
			AuthBurst: authBurst,
		},
		Log: LogConfig{
			Level:  getEnv("ADMINPANEL_LOG_LEVEL", "info"),
			Format: getEnv("ADMINPANEL_LOG_FORMAT", "json"),
		},
		Telemetry: TelemetryConfig{
			MetricsEnabled: metricsEnabled,
			OTLPEndpoint:   getEnv("ADMINPANEL_OTLP_ENDPOINT", ""),
			OTLPInsecure:   otlpInsecure,
			Environment:    getEnv("ADMINPANEL_ENVIRONMENT", "development"),
		},
		SelfHosted: selfHosted,
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return errors.New("ADMINPANEL_JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("ADMINPANEL_JWT_SECRET must be at least 32 characters")
	}

	if c.Database.SSLMode == "disable" && !c.SelfHosted {
		log.Warn().Msg("ADMINPANEL_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}

	// Bounds checks.
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("ADMINPANEL_DB_PORT must be 1-65535, got %d", c.Database.Port)
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("ADMINPANEL_DB_MAX_CONNS must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("ADMINPANEL_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("ADMINPANEL_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("ADMINPANEL_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}

	switch c.Idempotency.Backend {
	case IdempotencyPostgres, IdempotencyRedis:
	default:
		return fmt.Errorf("ADMINPANEL_IDEMPOTENCY_BACKEND must be %q or %q, got %q",
			IdempotencyPostgres, IdempotencyRedis, c.Idempotency.Backend)
	}

	if c.Purge.PageSize < 1 || c.Purge.PageSize > 10000 {
		return fmt.Errorf("ADMINPANEL_PURGE_PAGE_SIZE must be 1-10000, got %d", c.Purge.PageSize)
	}
	if p := c.Purge.UploadPrefix; p != "" && strings.Count(p, "%s") != 1 {
		return fmt.Errorf("ADMINPANEL_PURGE_UPLOAD_PREFIX must contain exactly one %%s, got %q", p)
	}

	if s := c.Admin.BootstrapSecret; s != "" && len(s) < 16 {
		return errors.New("ADMINPANEL_ADMIN_BOOTSTRAP_SECRET must be at least 16 characters")
	}

	if c.RateLimit.APIRPS <= 0 || c.RateLimit.APIBurst < 1 {
		return fmt.Errorf("ADMINPANEL_RATE_LIMIT_RPS and _BURST must be positive, got %g/%d",
			c.RateLimit.APIRPS, c.RateLimit.APIBurst)
	}
	if c.RateLimit.AuthRPS <= 0 || c.RateLimit.AuthBurst < 1 {
		return fmt.Errorf("ADMINPANEL_AUTH_RATE_LIMIT_RPS and _BURST must be positive, got %g/%d",
			c.RateLimit.AuthRPS, c.RateLimit.AuthBurst)
	}

	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// parsePartitions reads "name:table:owner_field" entries.
func parsePartitions(key string, entries []string) ([]domain.Partition, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	seen := make(map[string]bool, len(entries))
	out := make([]domain.Partition, 0, len(entries))
	for _, e := range entries {
		parts := strings.Split(e, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("parsing %s entry %q: want name:table:owner_field", key, e)
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if parts[i] == "" {
				return nil, fmt.Errorf("parsing %s entry %q: empty component", key, e)
			}
		}
		if seen[parts[0]] {
			return nil, fmt.Errorf("parsing %s: duplicate partition %q", key, parts[0])
		}
		seen[parts[0]] = true
		out = append(out, domain.Partition{Name: parts[0], Table: parts[1], OwnerField: parts[2]})
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
