package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the notification service and the
// collector. It is read-only once loaded.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Geolocation GeolocationConfig `yaml:"geolocation"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Message     MessageConfig     `yaml:"message"`
	Storage     StorageConfig     `yaml:"storage"`
	Tracking    TrackingConfig    `yaml:"tracking"`
	Collector   CollectorConfig   `yaml:"collector"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port for http.Server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// Redact reports whether PII redaction is on (default true).
func (c LogConfig) Redact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// GeolocationConfig configures the IP geolocation provider (ip-api.com compatible).
type GeolocationConfig struct {
	BaseURL        string `yaml:"base_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	DefaultCountry string `yaml:"default_country"`
}

// Timeout returns the configured timeout as a duration
func (c GeolocationConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TelegramConfig holds the messaging bot endpoint configuration
type TelegramConfig struct {
	BotToken       string `yaml:"bot_token"`
	ChatID         string `yaml:"chat_id"`
	BaseURL        string `yaml:"base_url"`
	ParseMode      string `yaml:"parse_mode"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c TelegramConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MessageConfig controls the rendered notification text.
type MessageConfig struct {
	Source   string `yaml:"source"`
	Timezone string `yaml:"timezone"`
}

// StorageConfig selects the optional persistence backend for enriched records.
// Type is one of: none, local, rest, postgres, redis, dynamodb, s3.
type StorageConfig struct {
	Type           string `yaml:"type"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`

	LocalPath string `yaml:"local_path"`

	RESTURL    string `yaml:"rest_url"`
	RESTAPIKey string `yaml:"rest_api_key"`
	RESTTable  string `yaml:"rest_table"`

	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`

	RedisURL    string `yaml:"redis_url"`
	RedisStream string `yaml:"redis_stream"`

	DynamoDBTable string `yaml:"dynamodb_table"`
	S3Bucket      string `yaml:"s3_bucket"`
	S3Prefix      string `yaml:"s3_prefix"`

	AWS AWSConfig `yaml:"aws"`
}

// Timeout returns the configured timeout as a duration
func (c StorageConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Persists reports whether this deployment variant persists records.
func (c StorageConfig) Persists() bool {
	return c.Type != "" && c.Type != StorageNone
}

// Storage backends.
const (
	StorageNone     = "none"
	StorageLocal    = "local"
	StorageREST     = "rest"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageDynamoDB = "dynamodb"
	StorageS3       = "s3"
)

var storageTypes = map[string]bool{
	StorageNone: true, StorageLocal: true, StorageREST: true, StoragePostgres: true,
	StorageRedis: true, StorageDynamoDB: true, StorageS3: true,
}

// AWSConfig holds credentials shared by the AWS-backed sinks.
type AWSConfig struct {
	Region    string `yaml:"region"`
	Profile   string `yaml:"profile"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// GetProfile returns the AWS profile to use (empty in containers, where the
// task role provides credentials).
func (c AWSConfig) GetProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.Profile
}

// TrackingConfig controls the best-effort analytics mirror.
// Sink is one of: none, log, sqs.
type TrackingConfig struct {
	Sink        string    `yaml:"sink"`
	SQSQueueURL string    `yaml:"sqs_queue_url"`
	Consent     *bool     `yaml:"consent"`
	Currency    string    `yaml:"currency"`
	AWS         AWSConfig `yaml:"aws"`
}

// ConsentGranted reports the configured consent flag. Unset means no consent.
func (c TrackingConfig) ConsentGranted() bool {
	return c.Consent != nil && *c.Consent
}

// CollectorConfig configures the client-side submission collector.
type CollectorConfig struct {
	Endpoint       string `yaml:"endpoint"`
	GeoURL         string `yaml:"geo_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ConsentFile    string `yaml:"consent_file"`
}

// Timeout returns the configured timeout as a duration
func (c CollectorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with only defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Geolocation.BaseURL == "" {
		cfg.Geolocation.BaseURL = "http://ip-api.com"
	}
	if cfg.Geolocation.UserAgent == "" {
		cfg.Geolocation.UserAgent = "OneGateway/1.0"
	}
	if cfg.Geolocation.TimeoutSeconds == 0 {
		cfg.Geolocation.TimeoutSeconds = 3
	}
	if cfg.Geolocation.DefaultCountry == "" {
		cfg.Geolocation.DefaultCountry = "IN"
	}
	if cfg.Telegram.BaseURL == "" {
		cfg.Telegram.BaseURL = "https://api.telegram.org"
	}
	if cfg.Telegram.ParseMode == "" {
		cfg.Telegram.ParseMode = "Markdown"
	}
	if cfg.Telegram.TimeoutSeconds == 0 {
		cfg.Telegram.TimeoutSeconds = 10
	}
	if cfg.Message.Source == "" {
		cfg.Message.Source = "OneGateway Website"
	}
	if cfg.Message.Timezone == "" {
		cfg.Message.Timezone = "Asia/Kolkata"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = StorageNone
	}
	if cfg.Storage.TimeoutSeconds == 0 {
		cfg.Storage.TimeoutSeconds = 5
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data"
	}
	if cfg.Storage.RESTTable == "" {
		cfg.Storage.RESTTable = "contact_submissions"
	}
	if cfg.Storage.Table == "" {
		cfg.Storage.Table = "contact_submissions"
	}
	if cfg.Storage.RedisStream == "" {
		cfg.Storage.RedisStream = "contact_submissions"
	}
	if cfg.Storage.S3Prefix == "" {
		cfg.Storage.S3Prefix = "contact-submissions/"
	}
	if cfg.Storage.AWS.Region == "" {
		cfg.Storage.AWS.Region = "ap-south-1"
	}
	if cfg.Tracking.Sink == "" {
		cfg.Tracking.Sink = "log"
	}
	if cfg.Tracking.Currency == "" {
		cfg.Tracking.Currency = "INR"
	}
	if cfg.Tracking.AWS.Region == "" {
		cfg.Tracking.AWS.Region = cfg.Storage.AWS.Region
	}
	if cfg.Collector.Endpoint == "" {
		cfg.Collector.Endpoint = "http://localhost:8080/"
	}
	if cfg.Collector.GeoURL == "" {
		cfg.Collector.GeoURL = "http://ip-api.com"
	}
	if cfg.Collector.TimeoutSeconds == 0 {
		cfg.Collector.TimeoutSeconds = 10
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// A missing config file is not an error: env-only deployments start from defaults.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	var cfg *Config
	if path == "" {
		cfg = Default()
	} else {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
			cfg = Default()
		default:
			return nil, err
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if token := os.Getenv("TELEGRAM_BOT_TOKEN"); token != "" {
		cfg.Telegram.BotToken = token
	}
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		cfg.Telegram.ChatID = chatID
	}
	if baseURL := os.Getenv("TELEGRAM_BASE_URL"); baseURL != "" {
		cfg.Telegram.BaseURL = baseURL
	}
	if baseURL := os.Getenv("GEO_BASE_URL"); baseURL != "" {
		cfg.Geolocation.BaseURL = baseURL
	}
	if t := os.Getenv("STORAGE_TYPE"); t != "" {
		cfg.Storage.Type = strings.ToLower(t)
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Storage.DatabaseURL = dsn
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Storage.RedisURL = redisURL
	}
	if restURL := os.Getenv("SUPABASE_URL"); restURL != "" {
		cfg.Storage.RESTURL = restURL
	}
	if key := os.Getenv("SUPABASE_KEY"); key != "" {
		cfg.Storage.RESTAPIKey = key
	}
	if queueURL := os.Getenv("SQS_TRACKING_QUEUE_URL"); queueURL != "" {
		cfg.Tracking.SQSQueueURL = queueURL
		cfg.Tracking.Sink = "sqs"
	}
	if endpoint := os.Getenv("NOTIFY_ENDPOINT"); endpoint != "" {
		cfg.Collector.Endpoint = endpoint
	}

	return cfg, nil
}

// Validate checks settings the notification service cannot run without.
func (cfg *Config) Validate() error {
	if strings.TrimSpace(cfg.Telegram.BotToken) == "" {
		return fmt.Errorf("telegram.bot_token (TELEGRAM_BOT_TOKEN) is required")
	}
	if strings.TrimSpace(cfg.Telegram.ChatID) == "" {
		return fmt.Errorf("telegram.chat_id (TELEGRAM_CHAT_ID) is required")
	}
	if cfg.Geolocation.TimeoutSeconds <= 0 {
		return fmt.Errorf("geolocation.timeout_seconds must be > 0")
	}
	if cfg.Telegram.TimeoutSeconds <= 0 {
		return fmt.Errorf("telegram.timeout_seconds must be > 0")
	}
	if cfg.Storage.TimeoutSeconds <= 0 {
		return fmt.Errorf("storage.timeout_seconds must be > 0")
	}
	if !storageTypes[cfg.Storage.Type] {
		return fmt.Errorf("storage.type %q is not one of none, local, rest, postgres, redis, dynamodb, s3", cfg.Storage.Type)
	}
	switch cfg.Tracking.Sink {
	case "none", "log":
	case "sqs":
		if cfg.Tracking.SQSQueueURL == "" {
			return fmt.Errorf("tracking.sqs_queue_url is required when tracking.sink is sqs")
		}
	default:
		return fmt.Errorf("tracking.sink %q is not one of none, log, sqs", cfg.Tracking.Sink)
	}
	return nil
}
