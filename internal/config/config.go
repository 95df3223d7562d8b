package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Worker     WorkerConfig     `yaml:"worker"`
	Google     GoogleConfig     `yaml:"google"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	SeedPath   string           `yaml:"seed_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIGRPCConfig struct {
	Enabled    bool         `yaml:"enabled"`
	Port       int          `yaml:"port"`
	Reflection bool         `yaml:"reflection"`
	TLS        APITLSConfig `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// GatewayConfig configures the validating gateway in front of the API server.
type GatewayConfig struct {
	Port         int    `yaml:"port"`
	UpstreamURL  string `yaml:"upstream_url"`
	UpstreamGRPC string `yaml:"upstream_grpc"`

	// Sent to the API server when its auth is enabled.
	UpstreamAPIKey       string `yaml:"upstream_api_key"`
	UpstreamAPIKeyHeader string `yaml:"upstream_api_key_header"`

	// Per-user fixed window limit keyed by the user id header; 0 disables it.
	RateLimitRequests int `yaml:"rate_limit_requests"`
	RateLimitWindow   int `yaml:"rate_limit_window"`
}

type WorkerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	MaxRetries     int    `yaml:"max_retries"`
	InitialDelay   string `yaml:"initial_delay"`
	MaxDelay       string `yaml:"max_delay"`
	PollInterval   string `yaml:"poll_interval"`
	QueueKey       string `yaml:"queue_key"`
	DeadLetterKey  string `yaml:"dead_letter_key"`
	// NotifyOnEvents has no effect unless telegram.bot_token is also set.
	NotifyOnEvents bool   `yaml:"notify_on_events"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type GoogleConfig struct {
	CredentialsFile       string `yaml:"credentials_file"`
	BookingsSpreadsheetID string `yaml:"bookings_spreadsheet_id"`
}

// TelegramConfig enables booking notifications to an operations chat.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
	Debug    bool   `yaml:"debug"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Gateway.UpstreamURL != "" {
		u, err := url.Parse(c.Gateway.UpstreamURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("gateway upstream_url is invalid: %q", c.Gateway.UpstreamURL)
		}
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return errors.New("telegram chat_id is required when bot_token is set")
	}

	return nil
}

// NotificationsEnabled reports whether booking events should reach Telegram.
func (c *Config) NotificationsEnabled() bool {
	return c.Worker.NotifyOnEvents && c.Telegram.BotToken != ""
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 9091
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 9090
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9100
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}

	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8080
	}
	if c.Gateway.UpstreamURL == "" {
		c.Gateway.UpstreamURL = fmt.Sprintf("http://localhost:%d", c.API.HTTP.Port)
	}
	if c.Gateway.UpstreamGRPC == "" {
		c.Gateway.UpstreamGRPC = fmt.Sprintf("localhost:%d", c.API.GRPC.Port)
	}
	if c.Gateway.UpstreamAPIKeyHeader == "" {
		c.Gateway.UpstreamAPIKeyHeader = c.API.Auth.HeaderAPIKey
	}
	if c.Gateway.RateLimitRequests > 0 && c.Gateway.RateLimitWindow == 0 {
		c.Gateway.RateLimitWindow = 60
	}

	if c.Worker.QueueKey == "" {
		c.Worker.QueueKey = "shareit:outbox"
	}
	if c.Worker.DeadLetterKey == "" {
		c.Worker.DeadLetterKey = "shareit:outbox:deadletter"
	}
}
