package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golook/golook/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.FromEnvironment()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.Addr)
	require.NotEmpty(t, cfg.StoragePath)
	require.Empty(t, cfg.RedisURL)

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	require.Equal(t, time.Hour, ttl)

	maxUploadBytes, err := cfg.MaxUploadBytes()
	require.NoError(t, err)
	require.EqualValues(t, 32_000_000, maxUploadBytes)
}

func TestParse(t *testing.T) {
	cfg, err := config.Parse(strings.NewReader(`
addr: ":9090"
storage-path: /var/lib/golook
redis-url: redis://localhost:6379/0
cache-ttl: 30m
max-upload-size: 8 MiB
`))
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "/var/lib/golook", cfg.StoragePath)
	require.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)

	ttl, err := cfg.TTL()
	require.NoError(t, err)
	require.Equal(t, 30*time.Minute, ttl)

	maxUploadBytes, err := cfg.MaxUploadBytes()
	require.NoError(t, err)
	require.EqualValues(t, 8*1024*1024, maxUploadBytes)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := config.Parse(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("GOLOOK_ADDR", ":7070")
	t.Setenv("GOLOOK_STORAGE_PATH", "/srv/golook")

	cfg, err := config.Parse(strings.NewReader(`addr: ":9090"`))
	require.NoError(t, err)

	// Environment wins over the file
	require.Equal(t, ":7070", cfg.Addr)
	require.Equal(t, "/srv/golook", cfg.StoragePath)
}

func TestBadValues(t *testing.T) {
	cfg := config.Default()

	cfg.CacheTTL = "an eternity"
	_, err := cfg.TTL()
	require.Error(t, err)

	cfg.MaxUploadSize = "a lot"
	_, err = cfg.MaxUploadBytes()
	require.Error(t, err)
}
