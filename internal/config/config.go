package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Worker   WorkerConfig
	Store    StoreConfig
	Feed     FeedConfig
	Transfer TransferConfig
	Assist   AssistConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimit    int // requests per second, 0 disables
	AllowOrigins []string
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type StoreConfig struct {
	Driver   string // "memory" or "sqlite"
	Path     string
	SeedPath string
}

// FeedConfig controls the optional external alert feeds that are turned
// into notices. Both feeds share one poll interval.
type FeedConfig struct {
	PollInterval time.Duration
	GDACS        FeedSource
	USGS         FeedSource
}

type FeedSource struct {
	Enabled bool
	URL     string
}

func (f FeedConfig) AnyEnabled() bool {
	return f.GDACS.Enabled || f.USGS.Enabled
}

type TransferConfig struct {
	Delay   time.Duration
	Workers int
	Queue   int
}

type AssistConfig struct {
	URL     string
	Timeout time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimit:    getEnvInt("RATE_LIMIT", 10),
			AllowOrigins: getEnvList("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		Store: StoreConfig{
			Driver:   getEnv("STORE", "memory"),
			Path:     getEnv("DB_PATH", "./data/crisis-response.db"),
			SeedPath: getEnv("SEED_PATH", ""),
		},
		Feed: FeedConfig{
			PollInterval: getEnvDuration("FEED_POLL_INTERVAL", 10*time.Minute),
			GDACS: FeedSource{
				Enabled: getEnvBool("GDACS_ENABLED", false),
				URL:     getEnv("GDACS_URL", "https://www.gdacs.org/xml/rss.xml"),
			},
			USGS: FeedSource{
				Enabled: getEnvBool("USGS_ENABLED", false),
				URL:     getEnv("USGS_URL", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary/4.5_hour.geojson"),
			},
		},
		Transfer: TransferConfig{
			Delay:   getEnvDuration("TRANSFER_DELAY", 2*time.Second),
			Workers: getEnvInt("TRANSFER_WORKERS", 2),
			Queue:   getEnvInt("TRANSFER_QUEUE", 32),
		},
		Assist: AssistConfig{
			URL:     getEnv("ASSIST_URL", "http://localhost:5000"),
			Timeout: getEnvDuration("ASSIST_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %d", c.Server.RateLimit)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Store.Driver != "memory" && c.Store.Driver != "sqlite" {
		return fmt.Errorf("invalid store driver: %s", c.Store.Driver)
	}

	if c.Worker.Count < 1 || c.Transfer.Workers < 1 {
		return fmt.Errorf("worker counts must be at least 1")
	}
	if c.Worker.BufferSize < 0 || c.Transfer.Queue < 0 {
		return fmt.Errorf("queue sizes must not be negative")
	}
	if c.Transfer.Delay < 0 {
		return fmt.Errorf("transfer delay must not be negative")
	}
	if c.Feed.AnyEnabled() && c.Feed.PollInterval < time.Minute {
		return fmt.Errorf("feed poll interval must be at least 1 minute")
	}
	if c.Assist.Timeout <= 0 {
		return fmt.Errorf("assist timeout must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
