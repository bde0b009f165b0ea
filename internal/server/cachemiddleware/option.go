package cachemiddleware

import (
	"time"

	"go.uber.org/zap"
)

type Option func(middleware *Middleware)

func WithTTL(ttl time.Duration) Option {
	return func(middleware *Middleware) {
		middleware.ttl = ttl
	}
}

// WithMutatingPredicate overrides the set of methods that trigger cache
// invalidation instead of cache lookups.
func WithMutatingPredicate(isMutating func(method string) bool) Option {
	return func(middleware *Middleware) {
		middleware.isMutating = isMutating
	}
}

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(middleware *Middleware) {
		middleware.logger = logger
	}
}
