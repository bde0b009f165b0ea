package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr string `yaml:"addr" env:"GOLOOK_ADDR"`

	// StoragePath is the directory holding one canonical-encoded blob
	// per image id.
	StoragePath string `yaml:"storage-path" env:"GOLOOK_STORAGE_PATH"`

	// RedisURL enables the Redis cache backend when set
	// (e.g. redis://localhost:6379/0). Without it an in-process cache
	// backend is used.
	RedisURL string `yaml:"redis-url" env:"GOLOOK_REDIS_URL"`

	CacheTTL      string `yaml:"cache-ttl" env:"GOLOOK_CACHE_TTL"`
	MaxUploadSize string `yaml:"max-upload-size" env:"GOLOOK_MAX_UPLOAD_SIZE"`
}

func Default() *Config {
	return &Config{
		Addr:          ":8080",
		StoragePath:   filepath.Join(os.TempDir(), "golook"),
		CacheTTL:      "1h",
		MaxUploadSize: "32 MB",
	}
}

// Parse reads a YAML configuration and applies environment variable
// overrides on top of it.
func Parse(r io.Reader) (*Config, error) {
	config := Default()

	if err := yaml.NewDecoder(r).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	if err := env.Parse(config); err != nil {
		return nil, err
	}

	return config, nil
}

// FromEnvironment returns the default configuration with environment
// variable overrides applied, for running without a configuration file.
func FromEnvironment() (*Config, error) {
	config := Default()

	if err := env.Parse(config); err != nil {
		return nil, err
	}

	return config, nil
}

func (config *Config) TTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(config.CacheTTL)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cache TTL value %q: %w", config.CacheTTL, err)
	}

	return ttl, nil
}

func (config *Config) MaxUploadBytes() (int64, error) {
	maxUploadBytes, err := humanize.ParseBytes(config.MaxUploadSize)
	if err != nil {
		return 0, fmt.Errorf("failed to parse max upload size value %q: %w", config.MaxUploadSize, err)
	}

	return int64(maxUploadBytes), nil
}
