package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Webhook     WebhookConfig
	SyncLog     SyncLogConfig
	Integration IntegrationConfig
	Storage     StorageConfig
	Kafka       KafkaConfig
	Telemetry   TelemetryConfig
	Profiling   ProfilingConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the service runs with production rules
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
	LogLevel        string
	// AutoMigrate applies the embedded migrations on server start
	AutoMigrate bool
}

// RedisConfig holds Redis connection settings. When disabled, webhook
// redelivery detection uses an in-process store.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds operator token settings
type JWTConfig struct {
	Secret                string
	Issuer                string
	AccessTokenExpiration time.Duration
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int
	// MaxWebhookBodySize caps raw webhook bodies in bytes
	MaxWebhookBodySize int64
	// MaxRequestBodySize caps operator API bodies in bytes
	MaxRequestBodySize int64
	// RequestTimeout bounds operator API handlers; zero disables it
	RequestTimeout time.Duration
	TrustedProxies []string
	// CORSAllowOrigins lists the operator panel origins; webhooks always allow any origin
	CORSAllowOrigins []string
	RateLimit        RateLimitConfig
}

// RateLimitConfig allows N requests per Window per key, refilled evenly
// across the window. Operator API calls are keyed by operator, webhooks by
// client IP.
type RateLimitConfig struct {
	Enabled         bool
	APIRequests     int
	WebhookRequests int
	Window          time.Duration
}

// WebhookConfig controls inbound webhook handling
type WebhookConfig struct {
	// RequireSignature rejects deliveries for platforms with no stored webhook secret
	RequireSignature bool
	// DedupeEnabled turns on redelivery short-circuiting by delivery id
	DedupeEnabled bool
	// IdempotencyTTL is how long processed delivery ids are remembered
	IdempotencyTTL time.Duration
}

// SyncLogConfig controls pruning of the per-order sync history
type SyncLogConfig struct {
	// Retention is how long sync log rows are kept; zero keeps them forever
	Retention     time.Duration
	PruneInterval time.Duration
}

// IntegrationConfig holds outbound platform client settings
type IntegrationConfig struct {
	ClientTimeout time.Duration
	// PushTimeout bounds a status push and its sync log write. It runs
	// detached from the operator request.
	PushTimeout       time.Duration
	MaxResponseSize   int64
	UserAgent         string
	ShopifyAPIVersion string
	// CredentialsKey seals stored platform secrets; empty stores them as plain text
	CredentialsKey string
}

// StorageConfig holds the raw webhook payload archive settings
type StorageConfig struct {
	Enabled   bool
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	AccessKey string
	SecretKey string
	// UsePathStyle is required by most S3-compatible stores such as MinIO
	UsePathStyle bool
}

// KafkaConfig holds order event publishing settings
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool
	DBTraceEnabled    bool
	DBLogFullSQL      bool
	DBSlowQueryThresh time.Duration
}

// ProfilingConfig holds Pyroscope continuous profiling settings
type ProfilingConfig struct {
	Enabled           bool
	ServerAddress     string
	BasicAuthUser     string
	BasicAuthPassword string
}

// Load reads configuration from config.toml and ORDERHUB_ environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("ORDERHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
			LogLevel:        v.GetString("database.log_level"),
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                v.GetString("jwt.secret"),
			Issuer:                v.GetString("jwt.issuer"),
			AccessTokenExpiration: v.GetDuration("jwt.access_token_expiration"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:        v.GetDuration("http.read_timeout"),
			WriteTimeout:       v.GetDuration("http.write_timeout"),
			IdleTimeout:        v.GetDuration("http.idle_timeout"),
			ShutdownTimeout:    v.GetDuration("http.shutdown_timeout"),
			MaxHeaderBytes:     v.GetInt("http.max_header_bytes"),
			MaxWebhookBodySize: v.GetInt64("http.max_webhook_body_size"),
			MaxRequestBodySize: v.GetInt64("http.max_request_body_size"),
			RequestTimeout:     v.GetDuration("http.request_timeout"),
			TrustedProxies:     splitList(v.GetStringSlice("http.trusted_proxies")),
			CORSAllowOrigins:   splitList(v.GetStringSlice("http.cors_allow_origins")),
			RateLimit: RateLimitConfig{
				Enabled:         v.GetBool("http.rate_limit.enabled"),
				APIRequests:     v.GetInt("http.rate_limit.api_requests"),
				WebhookRequests: v.GetInt("http.rate_limit.webhook_requests"),
				Window:          v.GetDuration("http.rate_limit.window"),
			},
		},
		Webhook: WebhookConfig{
			RequireSignature: v.GetBool("webhook.require_signature"),
			DedupeEnabled:    v.GetBool("webhook.dedupe_enabled"),
			IdempotencyTTL:   v.GetDuration("webhook.idempotency_ttl"),
		},
		SyncLog: SyncLogConfig{
			Retention:     v.GetDuration("sync_log.retention"),
			PruneInterval: v.GetDuration("sync_log.prune_interval"),
		},
		Integration: IntegrationConfig{
			ClientTimeout:     v.GetDuration("integration.client_timeout"),
			PushTimeout:       v.GetDuration("integration.push_timeout"),
			MaxResponseSize:   v.GetInt64("integration.max_response_size"),
			UserAgent:         v.GetString("integration.user_agent"),
			ShopifyAPIVersion: v.GetString("integration.shopify_api_version"),
			CredentialsKey:    v.GetString("integration.credentials_key"),
		},
		Storage: StorageConfig{
			Enabled:      v.GetBool("storage.enabled"),
			Bucket:       v.GetString("storage.bucket"),
			Region:       v.GetString("storage.region"),
			Endpoint:     v.GetString("storage.endpoint"),
			Prefix:       v.GetString("storage.prefix"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
		},
		Kafka: KafkaConfig{
			Enabled:      v.GetBool("kafka.enabled"),
			Brokers:      splitList(v.GetStringSlice("kafka.brokers")),
			Topic:        v.GetString("kafka.topic"),
			WriteTimeout: v.GetDuration("kafka.write_timeout"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
			DBSlowQueryThresh: v.GetDuration("telemetry.db_slow_query_threshold"),
		},
		Profiling: ProfilingConfig{
			Enabled:           v.GetBool("profiling.enabled"),
			ServerAddress:     v.GetString("profiling.server_address"),
			BasicAuthUser:     v.GetString("profiling.basic_auth_user"),
			BasicAuthPassword: v.GetString("profiling.basic_auth_password"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// splitList accepts both TOML arrays and comma-separated environment values
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// applyDefaults sets default values for empty configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "orderhub"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "orderhub"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "orderhub"
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 12 * time.Hour
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.IsProduction() {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 30 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 120 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 15 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxWebhookBodySize == 0 {
		cfg.HTTP.MaxWebhookBodySize = 5 << 20 // 5MB
	}
	if cfg.HTTP.MaxRequestBodySize == 0 {
		cfg.HTTP.MaxRequestBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 30 * time.Second
	}
	if cfg.HTTP.RateLimit.APIRequests == 0 {
		cfg.HTTP.RateLimit.APIRequests = 600
	}
	if cfg.HTTP.RateLimit.WebhookRequests == 0 {
		cfg.HTTP.RateLimit.WebhookRequests = 1200
	}
	if cfg.HTTP.RateLimit.Window == 0 {
		cfg.HTTP.RateLimit.Window = time.Minute
	}

	if cfg.Webhook.IdempotencyTTL == 0 {
		cfg.Webhook.IdempotencyTTL = 24 * time.Hour
	}

	if cfg.Integration.ClientTimeout == 0 {
		cfg.Integration.ClientTimeout = 15 * time.Second
	}
	if cfg.Integration.PushTimeout == 0 {
		cfg.Integration.PushTimeout = time.Minute
	}
	if cfg.Integration.MaxResponseSize == 0 {
		cfg.Integration.MaxResponseSize = 10 << 20 // 10MB
	}
	if cfg.Integration.UserAgent == "" {
		cfg.Integration.UserAgent = "orderhub/1.0"
	}
	if cfg.Integration.ShopifyAPIVersion == "" {
		cfg.Integration.ShopifyAPIVersion = "2024-10"
	}

	if cfg.SyncLog.PruneInterval == 0 {
		cfg.SyncLog.PruneInterval = time.Hour
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "eu-central-1"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "webhooks"
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "orderhub.orders"
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = 10 * time.Second
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 && !cfg.App.IsProduction() {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = 60 * time.Second
	}
	if cfg.Telemetry.DBSlowQueryThresh == 0 {
		cfg.Telemetry.DBSlowQueryThresh = 200 * time.Millisecond
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.SyncLog.Retention < 0 {
		return fmt.Errorf("sync_log.retention cannot be negative")
	}
	if c.HTTP.MaxWebhookBodySize < 0 {
		return fmt.Errorf("http.max_webhook_body_size cannot be negative")
	}
	if c.HTTP.MaxRequestBodySize < 0 {
		return fmt.Errorf("http.max_request_body_size cannot be negative")
	}
	if c.HTTP.RateLimit.Enabled && (c.HTTP.RateLimit.APIRequests < 0 || c.HTTP.RateLimit.WebhookRequests < 0) {
		return fmt.Errorf("http.rate_limit request counts cannot be negative")
	}
	if c.Integration.ClientTimeout < 0 {
		return fmt.Errorf("integration.client_timeout cannot be negative")
	}
	if c.Integration.PushTimeout < 0 {
		return fmt.Errorf("integration.push_timeout cannot be negative")
	}
	if c.Integration.CredentialsKey != "" && len(c.Integration.CredentialsKey) < 32 {
		return fmt.Errorf("integration.credentials_key must be at least 32 characters")
	}

	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.Profiling.Enabled && c.Profiling.ServerAddress == "" {
		return fmt.Errorf("profiling.server_address is required when profiling is enabled")
	}

	if c.App.IsProduction() {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if !c.Webhook.RequireSignature {
			return fmt.Errorf("webhook.require_signature must be true in production")
		}
		if c.Integration.CredentialsKey == "" {
			return fmt.Errorf("integration.credentials_key is required in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
