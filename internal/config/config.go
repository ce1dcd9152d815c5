package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Store        StoreConfig
	Cache        CacheConfig
	Auth         AuthConfig
	Logging      LoggingConfig
	Gamification GamificationConfig
	Monitoring   MonitoringConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	ServerName      string
	AllowedOrigin   string
}

// DatabaseConfig holds Postgres connection and transaction settings
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
	AutoMigrate        bool

	// Serializable transactions are retried on conflict
	MaxRetryAttempts int
	RetryBackoff     time.Duration
	MaxRetryBackoff  time.Duration
}

// StoreConfig selects the statistics store implementation
type StoreConfig struct {
	Provider string // postgres, memory
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider   string // memory, redis
	RedisURL   string
	DefaultTTL time.Duration
	StatsTTL   time.Duration
	MaxEntries int
}

// AuthConfig holds bearer token verification settings
type AuthConfig struct {
	JWTSecret     string
	JWTIssuer     string
	ModeratorRole string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// GamificationConfig holds comment moderation and award settings
type GamificationConfig struct {
	CommentDenylist  []string
	DenylistLocale   string
	CommentMaxLength int
	CommentsPerHour  int
	AnonymousName    string
}

// MonitoringConfig holds metrics exposure settings
type MonitoringConfig struct {
	EnableMetrics bool
	MetricsPath   string
}

// Load reads configuration from the environment, loading .env files outside production
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:       loadServerConfig(env),
		Database:     loadDatabaseConfig(env),
		Store:        StoreConfig{Provider: getEnv("STORE_PROVIDER", "postgres")},
		Cache:        loadCacheConfig(),
		Auth:         loadAuthConfig(),
		Logging:      loadLoggingConfig(env),
		Gamification: loadGamificationConfig(),
		Monitoring: MonitoringConfig{
			EnableMetrics: getBoolEnv("ENABLE_METRICS", true),
			MetricsPath:   getEnv("METRICS_PATH", "/metrics"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20), // 1MB
		ServerName:      getEnv("SERVER_NAME", "CineHub"),
		AllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
	}

	if env == "development" {
		config.GracefulTimeout = getDurationEnv("GRACEFUL_TIMEOUT", 10*time.Second)
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	config := DatabaseConfig{
		URL:                getEnv("DATABASE_URL", ""),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
		MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		AutoMigrate:        getBoolEnv("DB_AUTO_MIGRATE", true),
		MaxRetryAttempts:   getIntEnv("DB_MAX_RETRY_ATTEMPTS", 8),
		RetryBackoff:       getDurationEnv("DB_RETRY_BACKOFF", 10*time.Millisecond),
		MaxRetryBackoff:    getDurationEnv("DB_MAX_RETRY_BACKOFF", 500*time.Millisecond),
	}

	if env == "production" {
		config.MaxOpenConns = getIntEnv("DB_MAX_OPEN_CONNS", 50)
		config.MaxIdleConns = getIntEnv("DB_MAX_IDLE_CONNS", 10)
	}

	return config
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:   getEnv("CACHE_PROVIDER", "memory"),
		RedisURL:   getEnv("REDIS_URL", ""),
		DefaultTTL: getDurationEnv("CACHE_DEFAULT_TTL", 5*time.Minute),
		StatsTTL:   getDurationEnv("CACHE_STATS_TTL", 30*time.Second),
		MaxEntries: getIntEnv("CACHE_MAX_ENTRIES", 10000),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", ""),
		ModeratorRole: getEnv("MODERATOR_ROLE", "moderator"),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
	}
}

func loadGamificationConfig() GamificationConfig {
	return GamificationConfig{
		CommentDenylist:  getSliceEnv("COMMENT_DENYLIST", DefaultCommentDenylist),
		DenylistLocale:   getEnv("DENYLIST_LOCALE", "tr"),
		CommentMaxLength: getIntEnv("COMMENT_MAX_LENGTH", 2000),
		CommentsPerHour:  getIntEnv("COMMENTS_PER_HOUR", 30),
		AnonymousName:    getEnv("ANONYMOUS_NAME", "Anonymous"),
	}
}

// DefaultCommentDenylist is used when COMMENT_DENYLIST is not set
var DefaultCommentDenylist = []string{
	"aptal", "salak", "gerizekalı", "ahmak",
	"idiot", "moron",
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server config: %w", err))
	}

	if c.Store.Provider != "memory" {
		if err := c.Database.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("database config: %w", err))
		}
	}

	switch c.Store.Provider {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("store config: unsupported provider %q", c.Store.Provider))
	}

	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("cache config: %w", err))
	}

	if err := c.Auth.Validate(c.IsProduction()); err != nil {
		errs = append(errs, fmt.Errorf("auth config: %w", err))
	}

	if err := c.Gamification.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("gamification config: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}

	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	if d.MaxRetryAttempts < 1 {
		return fmt.Errorf("DB_MAX_RETRY_ATTEMPTS must be at least 1")
	}

	return nil
}

func (c *CacheConfig) Validate() error {
	switch c.Provider {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis provider")
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	return nil
}

func (a *AuthConfig) Validate(production bool) error {
	if a.JWTSecret == "" && production {
		return fmt.Errorf("JWT_SECRET must be set for production")
	}
	return nil
}

func (g *GamificationConfig) Validate() error {
	if g.CommentMaxLength <= 0 {
		return fmt.Errorf("COMMENT_MAX_LENGTH must be positive")
	}
	if g.CommentsPerHour < 0 {
		return fmt.Errorf("COMMENTS_PER_HOUR cannot be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getSliceEnv splits a comma separated variable, dropping empty entries
func getSliceEnv(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
