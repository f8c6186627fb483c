package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from FRESSH_* environment variables. Flags on the root
// command override the backend selection.
type Config struct {
	Backend string `envconfig:"FRESSH_BACKEND" default:"local"`
	Path    string `envconfig:"FRESSH_PATH" default:".fressh"`

	Bucket    string `envconfig:"FRESSH_BUCKET"`
	Prefix    string `envconfig:"FRESSH_PREFIX"`
	Table     string `envconfig:"FRESSH_TABLE"`
	Partition string `envconfig:"FRESSH_PARTITION" default:"fressh"`

	Minio struct {
		Endpoint  string `envconfig:"FRESSH_MINIO_ENDPOINT"`
		AccessKey string `envconfig:"FRESSH_MINIO_ACCESS_KEY"`
		SecretKey string `envconfig:"FRESSH_MINIO_SECRET_KEY"`
		Secure    bool   `envconfig:"FRESSH_MINIO_SECURE" default:"true"`
	}

	MaxValueSize   int     `envconfig:"FRESSH_MAX_VALUE_SIZE" default:"2048"`
	SliceSize      int     `envconfig:"FRESSH_SLICE_SIZE" default:"1800"`
	Compression    string  `envconfig:"FRESSH_COMPRESSION"`
	Codec          string  `envconfig:"FRESSH_CODEC"`
	CallsPerSecond float64 `envconfig:"FRESSH_CALLS_PER_SECOND"`
	LogLevel       string  `envconfig:"FRESSH_LOG_LEVEL" default:"warn"`
}

// LoadConfig reads the environment.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("FRESSH_LOG_LEVEL: %w", err)
	}
	return l, nil
}
