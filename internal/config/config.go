package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the environment variable prefix for configuration
const EnvPrefix = "FESTIVAL"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Session   SessionConfig   `yaml:"session" envconfig:"SESSION"`
	Charts    ChartsConfig    `yaml:"charts" envconfig:"CHARTS"`
	WebSocket WebSocketConfig `yaml:"websocket" envconfig:"WEBSOCKET"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// UploadConfig contains workbook upload configuration
type UploadConfig struct {
	MaxUploadSize int64         `yaml:"max_upload_size" envconfig:"MAX_UPLOAD_SIZE" default:"10485760"`
	ParseTimeout  time.Duration `yaml:"parse_timeout" envconfig:"PARSE_TIMEOUT" default:"30s"`
}

// SessionConfig contains session store configuration
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl" envconfig:"TTL" default:"2h"`
}

// ChartsConfig contains chart defaults
type ChartsConfig struct {
	DefaultTopN int `yaml:"default_top_n" envconfig:"DEFAULT_TOP_N" default:"10"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE" default:"1024"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE" default:"1024"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD" default:"30s"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT" default:"60s"`
}

// Load loads configuration from environment variables and an optional
// config file. Environment variables take precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with default values applied,
// ignoring the environment and any config file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Upload: UploadConfig{
			MaxUploadSize: 10 << 20,
			ParseTimeout:  30 * time.Second,
		},
		Session: SessionConfig{
			TTL: 2 * time.Hour,
		},
		Charts: ChartsConfig{
			DefaultTopN: 10,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			PingPeriod:      30 * time.Second,
			PongWait:        60 * time.Second,
		},
	}
}

func configFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileCfg, envCfg Config) Config {
	if envCfg.Server.Port == 0 {
		envCfg.Server.Port = fileCfg.Server.Port
	}
	if envCfg.Server.ReadTimeout == 0 {
		envCfg.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if envCfg.Server.WriteTimeout == 0 {
		envCfg.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if envCfg.Server.IdleTimeout == 0 {
		envCfg.Server.IdleTimeout = fileCfg.Server.IdleTimeout
	}
	if envCfg.Server.RequestTimeout == 0 {
		envCfg.Server.RequestTimeout = fileCfg.Server.RequestTimeout
	}
	if len(envCfg.Security.AllowedOrigins) == 0 {
		envCfg.Security.AllowedOrigins = fileCfg.Security.AllowedOrigins
	}
	if envCfg.Logging.Level == "" {
		envCfg.Logging.Level = fileCfg.Logging.Level
	}
	if envCfg.Logging.Output == "" {
		envCfg.Logging.Output = fileCfg.Logging.Output
	}
	if envCfg.Upload.MaxUploadSize == 0 {
		envCfg.Upload.MaxUploadSize = fileCfg.Upload.MaxUploadSize
	}
	if envCfg.Session.TTL == 0 {
		envCfg.Session.TTL = fileCfg.Session.TTL
	}
	if envCfg.Charts.DefaultTopN == 0 {
		envCfg.Charts.DefaultTopN = fileCfg.Charts.DefaultTopN
	}

	return envCfg
}

// validate validates the configuration and normalizes fields with
// only one supported value.
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Upload.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	if c.Charts.DefaultTopN <= 0 {
		return fmt.Errorf("default top n must be positive")
	}

	// Only JSON logging is supported
	c.Logging.Format = "json"

	switch c.Logging.Output {
	case "stdout", "file", "both":
	default:
		c.Logging.Output = "stdout"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}
