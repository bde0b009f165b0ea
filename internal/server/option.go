package server

import (
	"time"

	"github.com/golook/golook/internal/server/cachemiddleware"
	"go.uber.org/zap"
)

type Option func(server *Server)

// WithCacheConnect sets the function that lazily establishes the cache
// backend connection on first use.
func WithCacheConnect(connect cachemiddleware.ConnectFunc) Option {
	return func(server *Server) {
		server.cacheConnect = connect
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(server *Server) {
		server.cacheTTL = ttl
	}
}

func WithMaxUploadBytes(maxUploadBytes int64) Option {
	return func(server *Server) {
		server.maxUploadBytes = maxUploadBytes
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(server *Server) {
		server.logger = logger
	}
}
