package run

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/golook/golook/internal/cache"
	redispkg "github.com/golook/golook/internal/cache/redis"
	configpkg "github.com/golook/golook/internal/config"
	serverpkg "github.com/golook/golook/internal/server"
	storepkg "github.com/golook/golook/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the golook server",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&configPath, "file", "f", "",
		"configuration file path (e.g. /etc/golook.yml)")

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	var config *configpkg.Config
	var err error

	if configPath != "" {
		// Parse the configuration file
		configBytes, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read configuration file at path %s: %w", configPath, err)
		}

		config, err = configpkg.Parse(bytes.NewReader(configBytes))
		if err != nil {
			return fmt.Errorf("failed to parse configuration file at path %s: %w", configPath, err)
		}
	} else {
		config, err = configpkg.FromEnvironment()
		if err != nil {
			return err
		}
	}

	ttl, err := config.TTL()
	if err != nil {
		return err
	}

	maxUploadBytes, err := config.MaxUploadBytes()
	if err != nil {
		return err
	}

	store, err := storepkg.New(config.StoragePath)
	if err != nil {
		return err
	}

	opts := []serverpkg.Option{
		serverpkg.WithLogger(zap.S()),
		serverpkg.WithCacheTTL(ttl),
		serverpkg.WithMaxUploadBytes(maxUploadBytes),
	}

	if redisURL := config.RedisURL; redisURL != "" {
		opts = append(opts, serverpkg.WithCacheConnect(func(_ context.Context) (cache.Backend, error) {
			backend, err := redispkg.New(redisURL)
			if err != nil {
				return nil, err
			}

			return backend, nil
		}))
	}

	server, err := serverpkg.New(config.Addr, store, opts...)
	if err != nil {
		return err
	}

	return server.Run(cmd.Context())
}
