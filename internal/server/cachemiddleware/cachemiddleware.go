// Package cachemiddleware provides transparent cache-aside behavior around
// request handling: read responses are served from and written to a
// key-value backend, mutations invalidate the affected path.
package cachemiddleware

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golook/golook/internal/cache"
	"github.com/golook/golook/internal/server/capturingresponsewriter"
	"github.com/im7mortal/kmutex"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	// Header signals to the client whether its response came from the cache.
	Header = "X-ASGILook-Cache"

	HeaderHit  = "Hit"
	HeaderMiss = "Miss"

	// KeyPrefix namespaces our entries on a backend shared with other users.
	KeyPrefix = "asgilook:/"

	// ContextKeyCached marks a response as having been served from the
	// cache. It is initialized to false at the start of every request and
	// is the single source of truth consulted after the handler ran.
	ContextKeyCached = "cached"

	DefaultTTL = time.Hour
)

var defaultInvalidateOn = []string{
	http.MethodDelete,
	http.MethodPost,
	http.MethodPut,
}

// ConnectFunc establishes a connection to the cache backend. It is invoked
// lazily, on the first request that needs the backend, because backend
// setup is itself a blocking operation that has no place in a constructor.
type ConnectFunc func(ctx context.Context) (cache.Backend, error)

type Middleware struct {
	connect    ConnectFunc
	ttl        time.Duration
	isMutating func(method string) bool
	logger     *zap.SugaredLogger
	kmutex     *kmutex.Kmutex

	initMtx sync.Mutex
	backend cache.Backend

	operationCounter metric.Int64Counter
}

func New(connect ConnectFunc, opts ...Option) (*Middleware, error) {
	middleware := &Middleware{
		connect: connect,
		ttl:     DefaultTTL,
		isMutating: func(method string) bool {
			return lo.Contains(defaultInvalidateOn, method)
		},
		kmutex: kmutex.New(),
	}

	// Apply options
	for _, opt := range opts {
		opt(middleware)
	}

	// Apply defaults
	if middleware.logger == nil {
		middleware.logger = zap.NewNop().Sugar()
	}

	// Metrics
	var err error

	middleware.operationCounter, err = otel.Meter("github.com/golook/golook").Int64Counter(
		"org.golook.cache.operation_count",
	)
	if err != nil {
		return nil, err
	}

	return middleware, nil
}

// Key computes the backend key for a request path.
func Key(path string) string {
	return KeyPrefix + path
}

func (middleware *Middleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		c.Set(ContextKeyCached, false)

		key := Key(c.Request().URL.Path)

		// No cache lookup on mutation paths, only invalidation afterwards,
		// and only when the mutation actually committed
		if middleware.isMutating(c.Request().Method) {
			err := next(c)

			if err == nil && c.Response().Status < http.StatusBadRequest {
				middleware.invalidate(ctx, key)
			}

			return err
		}

		// Hold a per-key lock across lookup-through-populate so that
		// identical concurrent misses compute the response once
		middleware.kmutex.Lock(key)
		defer middleware.kmutex.Unlock(key)

		if value, ok := middleware.lookup(ctx, key); ok {
			c.Set(ContextKeyCached, true)
			c.Response().Header().Set(Header, HeaderHit)

			return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, value)
		}

		c.Response().Header().Set(Header, HeaderMiss)

		capturingWriter := capturingresponsewriter.Wrap(c.Response().Writer)
		c.Response().Writer = capturingWriter

		if err := next(c); err != nil {
			return err
		}

		// Don't cache error responses; only freshly computed, non-empty
		// bodies populate the cache
		cached, _ := c.Get(ContextKeyCached).(bool)

		if cached || capturingWriter.StatusCode() >= http.StatusBadRequest {
			return nil
		}

		if body := capturingWriter.Body(); len(body) != 0 {
			middleware.populate(ctx, key, body)
		}

		return nil
	}
}

// backendHandle returns the lazily established backend connection,
// guaranteeing at most one connection attempt is in flight and that all
// callers observe the same handle once it's stable.
func (middleware *Middleware) backendHandle(ctx context.Context) (cache.Backend, error) {
	middleware.initMtx.Lock()
	defer middleware.initMtx.Unlock()

	if middleware.backend != nil {
		return middleware.backend, nil
	}

	backend, err := middleware.connect(ctx)
	if err != nil {
		return nil, err
	}

	middleware.backend = backend

	return backend, nil
}

func (middleware *Middleware) lookup(ctx context.Context, key string) ([]byte, bool) {
	backend, err := middleware.backendHandle(ctx)
	if err != nil {
		// Fail-open: a cache in trouble degrades to a miss
		middleware.logger.Warnf("cache backend unavailable, serving %q uncached: %v", key, err)
		middleware.countOperation(ctx, "connect", "error")

		return nil, false
	}

	value, err := backend.Get(ctx, key)

	switch {
	case err == nil:
		middleware.countOperation(ctx, "get", "hit")

		return value, true
	case errors.Is(err, cache.ErrNotFound):
		middleware.countOperation(ctx, "get", "miss")
	default:
		middleware.logger.Warnf("failed to retrieve cache entry %q, serving uncached: %v", key, err)
		middleware.countOperation(ctx, "get", "error")
	}

	return nil, false
}

func (middleware *Middleware) populate(ctx context.Context, key string, value []byte) {
	backend, err := middleware.backendHandle(ctx)
	if err != nil {
		middleware.logger.Warnf("cache backend unavailable, not caching %q: %v", key, err)
		middleware.countOperation(ctx, "connect", "error")

		return
	}

	if err := backend.Set(ctx, key, value, middleware.ttl); err != nil {
		middleware.logger.Warnf("failed to store cache entry %q: %v", key, err)
		middleware.countOperation(ctx, "set", "error")

		return
	}

	middleware.countOperation(ctx, "set", "ok")
}

func (middleware *Middleware) invalidate(ctx context.Context, key string) {
	backend, err := middleware.backendHandle(ctx)
	if err != nil {
		middleware.logger.Warnf("cache backend unavailable, not invalidating %q: %v", key, err)
		middleware.countOperation(ctx, "connect", "error")

		return
	}

	// Best-effort: a failed invalidation leaves a stale entry that the TTL
	// will eventually evict
	if err := backend.Delete(ctx, key); err != nil {
		middleware.logger.Warnf("failed to invalidate cache entry %q: %v", key, err)
		middleware.countOperation(ctx, "delete", "error")

		return
	}

	middleware.countOperation(ctx, "delete", "ok")
}

func (middleware *Middleware) countOperation(ctx context.Context, operation string, result string) {
	middleware.operationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
}
