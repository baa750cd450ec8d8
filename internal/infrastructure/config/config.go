// Package config provides configuration management using Viper
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	AI       AIConfig       `mapstructure:"ai"`
	Dialogue DialogueConfig `mapstructure:"dialogue"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AppConfig identifies the running application
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig contains Redis settings. Redis is optional; when disabled the
// in-memory cache repository serves instead.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
}

// AIConfig contains completion-provider settings
type AIConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Model              string        `mapstructure:"model"`
	Timeout            time.Duration `mapstructure:"timeout"`
	CompletionCacheTTL time.Duration `mapstructure:"completion_cache_ttl"`
}

// DialogueConfig tunes the dialogue pipeline
type DialogueConfig struct {
	TopN           int           `mapstructure:"top_n"`
	ReadyAttempts  int           `mapstructure:"ready_attempts"`
	ReadyInterval  time.Duration `mapstructure:"ready_interval"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`
	PromptCacheMax int           `mapstructure:"prompt_cache_max"`
	PromptCacheTTL time.Duration `mapstructure:"prompt_cache_ttl"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/recipetalk")

	v.SetEnvPrefix("RECIPETALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env cover everything
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "recipetalk")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "45s")
	v.SetDefault("server.idle_timeout", "60s")

	// Database defaults
	v.SetDefault("database.path", "recipetalk.db")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.database", 0)

	// AI defaults
	v.SetDefault("ai.base_url", "http://localhost:11434")
	v.SetDefault("ai.model", "llama3.2:3b")
	v.SetDefault("ai.timeout", "30s")
	v.SetDefault("ai.completion_cache_ttl", "15m")

	// Dialogue defaults
	v.SetDefault("dialogue.top_n", 3)
	v.SetDefault("dialogue.ready_attempts", 10)
	v.SetDefault("dialogue.ready_interval", "1s")
	v.SetDefault("dialogue.query_timeout", "30s")
	v.SetDefault("dialogue.prompt_cache_max", 64)
	v.SetDefault("dialogue.prompt_cache_ttl", "1h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.AI.BaseURL == "" {
		return fmt.Errorf("ai.base_url is required")
	}
	if c.Dialogue.TopN < 1 {
		return fmt.Errorf("dialogue.top_n must be at least 1")
	}
	if c.Dialogue.QueryTimeout <= 0 {
		return fmt.Errorf("dialogue.query_timeout must be positive")
	}
	return nil
}

// IsDevelopment returns true when running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}
