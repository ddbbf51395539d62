// Package config holds the environment-driven client configuration.
package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root application configuration.
type Config struct {
	Backend BackendConfig
	Storage StorageConfig
	Log     LogConfig

	// DownloadDir is where gallery downloads are written. Empty means the
	// platform default (~/Downloads).
	DownloadDir string `env:"FLOWDECK_DOWNLOAD_DIR"`
}

// BackendConfig holds the hosted data store settings.
type BackendConfig struct {
	URL     string        `env:"FLOWDECK_BACKEND_URL" env-required:"true"`
	AnonKey string        `env:"FLOWDECK_ANON_KEY"    env-required:"true"`
	Timeout time.Duration `env:"FLOWDECK_HTTP_TIMEOUT" env-default:"30s"`
}

// StorageConfig holds the S3-compatible object storage settings used for
// asset downloads. Downloads are disabled when Endpoint is empty.
type StorageConfig struct {
	Endpoint  string `env:"FLOWDECK_STORAGE_ENDPOINT"`
	AccessKey string `env:"FLOWDECK_STORAGE_ACCESS_KEY"`
	SecretKey string `env:"FLOWDECK_STORAGE_SECRET_KEY"`
	Bucket    string `env:"FLOWDECK_STORAGE_BUCKET" env-default:"creative-storage"`
	UseSSL    bool   `env:"FLOWDECK_STORAGE_SSL"    env-default:"true"`
}

// LogConfig holds logging settings. The TUI owns the terminal, so logs go
// to a file.
type LogConfig struct {
	Level string `env:"FLOWDECK_LOG_LEVEL" env-default:"info"`
	File  string `env:"FLOWDECK_LOG_FILE"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
