package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is the config file used when no path is given.
const DefaultPath = "configs/config.yaml"

// Supported LLM providers.
const (
	ProviderGemini = "gemini"
	ProviderEcho   = "echo"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultLLMModel      = "gemini-2.0-flash"
	defaultLLMTimeout    = "30s"
	defaultHistoryTTL    = "1h"
	defaultHistoryMax    = 20
	defaultRateRequests  = 100
	defaultRateWindow    = "60s"
	defaultTokenExpiry   = "168h"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Redis    RedisConfig    `koanf:"redis"`
	LLM      LLMConfig      `koanf:"llm"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	// TrustUpstreamRequestID reuses a well-formed incoming X-Request-ID.
	TrustUpstreamRequestID bool `koanf:"trust_upstream_request_id"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig limits each client IP to Requests per Window.
type RateLimitConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Requests int    `koanf:"requests"`
	Window   string `koanf:"window"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds JWT settings for the admin API.
type AuthConfig struct {
	Enabled     bool   `koanf:"enabled"`
	JWTSecret   string `koanf:"jwt_secret"`
	TokenExpiry string `koanf:"token_expiry"`
}

// RedisConfig holds the chat history cache settings. When disabled, history
// is cached in process memory.
type RedisConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Addr       string `koanf:"addr"`
	Password   string `koanf:"password"`
	DB         int    `koanf:"db"`
	HistoryTTL string `koanf:"history_ttl"`
	HistoryMax int    `koanf:"history_max"`
}

// LLMConfig selects and configures the language model backend.
type LLMConfig struct {
	Provider     string `koanf:"provider"`
	APIKey       string `koanf:"api_key"`
	BaseURL      string `koanf:"base_url"`
	DefaultModel string `koanf:"default_model"`
	Timeout      string `koanf:"timeout"`
	MaxRetries   int    `koanf:"max_retries"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__SERVER__PORT=9090 overrides server.port and
// APP__AUTH__JWT_SECRET overrides auth.jwt_secret.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps APP__DATABASE__POOL__MAX_IDLE_CONNS to database.pool.max_idle_conns.
func envKey(s string) string {
	key := strings.TrimPrefix(s, "APP__")
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}

// Validate normalizes values, fills optional defaults and checks cross-field
// constraints. Errors name the offending key.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateAuth,
		c.validateRedis,
		c.validateLLM,
		c.validateLog,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	if err := optionalDuration("server.timeout", &c.Server.Timeout); err != nil {
		return err
	}
	if err := optionalDuration("server.cors.max_age", &c.Server.CORS.MaxAge); err != nil {
		return err
	}

	rl := &c.Server.RateLimit
	if rl.Enabled {
		if rl.Requests == 0 {
			rl.Requests = defaultRateRequests
		}
		if rl.Requests < 0 {
			return fmt.Errorf("invalid server.rate_limit.requests %d: must be positive when rate limiting is enabled", rl.Requests)
		}
		if strings.TrimSpace(rl.Window) == "" {
			rl.Window = defaultRateWindow
		}
		if err := optionalDuration("server.rate_limit.window", &rl.Window); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	if c.Database.Driver == "sqlite" {
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	}

	if c.Database.Driver == "postgres" {
		if err := c.validatePostgres(); err != nil {
			return err
		}
	}

	return optionalDuration("database.pool.conn_max_lifetime", &c.Database.Pool.ConnMaxLifetime)
}

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres

	host := strings.TrimSpace(pg.Host)
	if host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	}
	user := strings.TrimSpace(pg.User)
	if user == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	dbName := strings.TrimSpace(pg.DBName)
	if dbName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	sslMode := strings.TrimSpace(pg.SSLMode)
	switch sslMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
	}
	if c.Server.Mode == gin.ReleaseMode {
		switch sslMode {
		case "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
		}
	}

	pg.Host = host
	pg.User = user
	pg.DBName = dbName
	pg.SSLMode = sslMode
	return nil
}

func (c *Config) validateAuth() error {
	if !c.Auth.Enabled {
		if c.Server.Mode == gin.ReleaseMode {
			return fmt.Errorf("auth.enabled must be true when server.mode is %q", gin.ReleaseMode)
		}
		return nil
	}

	jwtSecret := strings.TrimSpace(c.Auth.JWTSecret)
	if jwtSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
	}
	if len(jwtSecret) < 32 {
		return fmt.Errorf("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if c.Server.Mode == gin.ReleaseMode && CountSecretClasses(jwtSecret) < 3 {
		return fmt.Errorf("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}
	c.Auth.JWTSecret = jwtSecret

	if strings.TrimSpace(c.Auth.TokenExpiry) == "" {
		c.Auth.TokenExpiry = defaultTokenExpiry
	}
	return optionalDuration("auth.token_expiry", &c.Auth.TokenExpiry)
}

func (c *Config) validateRedis() error {
	r := &c.Redis
	if r.Enabled {
		addr := strings.TrimSpace(r.Addr)
		if addr == "" {
			return fmt.Errorf("redis.addr is required when redis is enabled")
		}
		r.Addr = addr
		if r.DB < 0 {
			return fmt.Errorf("invalid redis.db %d: must not be negative", r.DB)
		}
	}

	// History settings also apply to the in-memory fallback.
	if strings.TrimSpace(r.HistoryTTL) == "" {
		r.HistoryTTL = defaultHistoryTTL
	}
	if err := optionalDuration("redis.history_ttl", &r.HistoryTTL); err != nil {
		return err
	}
	if r.HistoryMax == 0 {
		r.HistoryMax = defaultHistoryMax
	}
	if r.HistoryMax < 0 || r.HistoryMax > 100 {
		return fmt.Errorf("invalid redis.history_max %d: must be between 1 and 100", r.HistoryMax)
	}
	return nil
}

func (c *Config) validateLLM() error {
	l := &c.LLM
	provider := strings.ToLower(strings.TrimSpace(l.Provider))
	switch provider {
	case "":
		provider = ProviderEcho
	case ProviderGemini, ProviderEcho:
	default:
		return fmt.Errorf("invalid llm.provider %q: must be one of %q, %q", l.Provider, ProviderGemini, ProviderEcho)
	}
	l.Provider = provider

	if provider == ProviderEcho && c.Server.Mode == gin.ReleaseMode {
		return fmt.Errorf("llm.provider %q is not allowed when server.mode is %q", ProviderEcho, gin.ReleaseMode)
	}

	if provider == ProviderGemini {
		l.APIKey = strings.TrimSpace(l.APIKey)
		if l.APIKey == "" {
			return fmt.Errorf("llm.api_key is required when provider is %q", ProviderGemini)
		}
		l.BaseURL = strings.TrimRight(strings.TrimSpace(l.BaseURL), "/")
		if l.BaseURL == "" {
			l.BaseURL = defaultGeminiBaseURL
		}
	}

	if strings.TrimSpace(l.DefaultModel) == "" {
		l.DefaultModel = defaultLLMModel
	}
	if strings.TrimSpace(l.Timeout) == "" {
		l.Timeout = defaultLLMTimeout
	}
	if err := optionalDuration("llm.timeout", &l.Timeout); err != nil {
		return err
	}
	if l.MaxRetries < 0 {
		return fmt.Errorf("invalid llm.max_retries %d: must not be negative", l.MaxRetries)
	}
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

// optionalDuration trims *v and, when it is set, requires a positive duration.
func optionalDuration(key string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, *v, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", key, *v)
	}
	return nil
}

// Duration parses a duration value that Validate has already checked.
// Empty or malformed values yield fallback.
func Duration(v string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// CountSecretClasses counts how many character classes (lowercase, uppercase,
// digit, symbol) are present in the given secret string.
func CountSecretClasses(secret string) int {
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	classes := 0
	for _, present := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if present {
			classes++
		}
	}
	return classes
}
