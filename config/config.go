package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Storage StorageConfig
	Refresh RefreshConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

// APIConfig configures the remote grocery API the agent syncs against.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// StorageConfig selects the durable store for guest snapshots.
// Driver "sqlite" keeps data in a local file; "redis" is used by the
// dev/emulator profile where the device store is a shared Redis.
type StorageConfig struct {
	Driver string
	Path   string // sqlite file path
	Redis  RedisConfig
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RefreshConfig controls the background re-fetch of server collections.
type RefreshConfig struct {
	Enabled bool
	Spec    string // cron spec
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("AGENT_PORT", "7180"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		API: APIConfig{
			BaseURL: getEnv("VEG_API_BASE_URL", "https://api.freshveg.example.com/api/v1"),
			Timeout: parseDuration(getEnv("VEG_API_TIMEOUT", "30s"), 30*time.Second),
		},
		Storage: StorageConfig{
			Driver: getEnv("STORAGE_DRIVER", "sqlite"),
			Path:   getEnv("STORAGE_PATH", "basket-agent.db"),
			Redis: RedisConfig{
				Host:     getEnv("REDIS_HOST", "localhost"),
				Port:     getEnv("REDIS_PORT", "6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
			},
		},
		Refresh: RefreshConfig{
			Enabled: getEnv("REFRESH_ENABLED", "true") == "true",
			Spec:    getEnv("REFRESH_CRON", "@every 5m"),
		},
	}

	return config, nil
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
