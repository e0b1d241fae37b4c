package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Admin     AdminConfig
	Analytics AnalyticsConfig
	Digest    DigestConfig
	Assets    AssetsConfig
	LogPath   string
}

type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	// URL is the Supabase Postgres connection string. The schema is owned
	// and migrated by the curation side; this service only queries it.
	URL string
}

type AdminConfig struct {
	// Key gates the /api/admin endpoints. An empty key disables the admin
	// surface entirely.
	Key string
}

type AnalyticsConfig struct {
	QueueSize     int
	InsertTimeout time.Duration
}

type DigestConfig struct {
	Cron   string
	DBPath string
}

// AssetsConfig lists the hosts floor-plan and photo URLs are allowed to
// point at. Loaded from config/server.yaml when present.
type AssetsConfig struct {
	AllowedHosts []string `yaml:"allowed_hosts"`
}

type serverYAML struct {
	Assets AssetsConfig `yaml:"assets"`
	Digest struct {
		Cron string `yaml:"cron"`
	} `yaml:"digest"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGIN", "*")},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Admin: AdminConfig{
			Key: os.Getenv("ADMIN_KEY"),
		},
		Analytics: AnalyticsConfig{
			QueueSize:     getEnvInt("ANALYTICS_QUEUE_SIZE", 256),
			InsertTimeout: 5 * time.Second,
		},
		Digest: DigestConfig{
			Cron:   getEnv("DIGEST_CRON", "0 6 * * *"),
			DBPath: getEnv("DIGEST_DB_PATH", "digests.db"),
		},
		LogPath: getEnv("LOG_PATH", "roomsizes.log"),
	}

	if err := cfg.loadServerYAML(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadServerYAML() error {
	data, err := os.ReadFile("config/server.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var y serverYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return err
	}

	if len(y.Assets.AllowedHosts) > 0 {
		c.Assets.AllowedHosts = y.Assets.AllowedHosts
	}
	if y.Digest.Cron != "" {
		c.Digest.Cron = y.Digest.Cron
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
