package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Auth      AuthConfig
	Log       LogConfig
	Provider  ProviderConfig
	Scheduler SchedulerConfig
	Kafka     KafkaConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// AuthConfig holds the key required on write routes
type AuthConfig struct {
	InternalAPIKey string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

// ProviderConfig holds upstream transport configuration
type ProviderConfig struct {
	HTTPTimeout time.Duration
}

// SchedulerConfig controls the periodic rate loading
type SchedulerConfig struct {
	Enabled bool
	Spec    string // robfig/cron spec, e.g. "@every 1m"
	Workers int    // rate types loaded concurrently per tick
}

// KafkaConfig configures rate event publishing. Publishing is disabled
// when Brokers is empty.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "localhost")
	v.SetDefault("DB_PATH", "./data/currency_rates.db")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost")
	v.SetDefault("INTERNAL_API_KEY", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_SPEC", "@every 1m")
	v.SetDefault("SCHEDULER_WORKERS", 4)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "currency-rates")

	config := &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("DB_PATH"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Auth: AuthConfig{
			InternalAPIKey: v.GetString("INTERNAL_API_KEY"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("LOG_LEVEL")),
			Format: strings.ToLower(v.GetString("LOG_FORMAT")),
		},
		Provider: ProviderConfig{
			HTTPTimeout: v.GetDuration("HTTP_TIMEOUT"),
		},
		Scheduler: SchedulerConfig{
			Enabled: v.GetBool("SCHEDULER_ENABLED"),
			Spec:    v.GetString("SCHEDULER_SPEC"),
			Workers: v.GetInt("SCHEDULER_WORKERS"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
	}

	if config.Provider.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT must be positive, got %q", v.GetString("HTTP_TIMEOUT"))
	}
	if config.Scheduler.Workers < 1 {
		return nil, fmt.Errorf("SCHEDULER_WORKERS must be at least 1, got %d", config.Scheduler.Workers)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// splitList splits a comma-separated value, dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
