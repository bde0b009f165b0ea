package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/brpaz/echozap"
	"github.com/golook/golook/internal/cache"
	"github.com/golook/golook/internal/cache/memory"
	"github.com/golook/golook/internal/server/cachemiddleware"
	imagespkg "github.com/golook/golook/internal/server/images"
	storepkg "github.com/golook/golook/internal/store"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultMaxUploadBytes = 32 * 1024 * 1024

type Server struct {
	listener   net.Listener
	httpServer *http.Server
	logger     *zap.SugaredLogger

	store          *storepkg.Store
	cacheConnect   cachemiddleware.ConnectFunc
	cacheTTL       time.Duration
	maxUploadBytes int64
}

func New(addr string, store *storepkg.Store, opts ...Option) (*Server, error) {
	server := &Server{
		store:          store,
		cacheTTL:       cachemiddleware.DefaultTTL,
		maxUploadBytes: DefaultMaxUploadBytes,
	}

	// Listen on the desired port
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	server.listener = listener

	// Apply options
	for _, opt := range opts {
		opt(server)
	}

	// Apply defaults
	if server.logger == nil {
		server.logger = zap.NewNop().Sugar()
	}

	if server.cacheConnect == nil {
		server.cacheConnect = func(_ context.Context) (cache.Backend, error) {
			return memory.New(), nil
		}
	}

	cacheMiddleware, err := cachemiddleware.New(
		server.cacheConnect,
		cachemiddleware.WithTTL(server.cacheTTL),
		cachemiddleware.WithLogger(server.logger),
	)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echozap.ZapLogger(server.logger.Desugar()))
	e.Use(cacheMiddleware.Handle)

	imagespkg.New(e.Group("/images"), server.store, server.maxUploadBytes)

	// Configure HTTP server
	server.httpServer = &http.Server{
		Handler:           otelhttp.NewHandler(e, "http.request"),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return server, nil
}

func (server *Server) Addr() string {
	return strings.ReplaceAll(server.listener.Addr().String(), "[::]", "127.0.0.1")
}

func (server *Server) Run(ctx context.Context) error {
	server.logger.Infof("listening on %s", server.Addr())

	go func() {
		<-ctx.Done()

		_ = server.httpServer.Close()
	}()

	return server.httpServer.Serve(server.listener)
}
