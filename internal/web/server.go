// Package web serves single and bulk QR generation over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rshade/qrbatch/internal/logging"
	"github.com/rshade/qrbatch/internal/pipeline"
	"github.com/rshade/qrbatch/internal/render"
	"github.com/rshade/qrbatch/internal/style"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	bytesPerMB        = 1 << 20
)

// Options configures a Server.
type Options struct {
	Addr string

	// Style is the base style; request fields override it.
	Style style.Config

	Concurrency   int
	FailurePolicy pipeline.FailurePolicy

	// MaxUploadMB caps request bodies.
	MaxUploadMB int

	// Renderer defaults to render.New().
	Renderer render.Renderer

	// SingleRenderer serves /api/v1/qr. It defaults to Renderer and may add
	// caching; bulk runs always use Renderer.
	SingleRenderer render.Renderer

	Version string
}

// Server is the qrbatch HTTP surface.
type Server struct {
	opts   Options
	engine *gin.Engine
	logger zerolog.Logger

	// bulkMu admits one bulk run at a time.
	bulkMu sync.Mutex
}

// NewServer builds the gin engine and registers every route.
func NewServer(opts Options, logger zerolog.Logger) *Server {
	if opts.Renderer == nil {
		opts.Renderer = render.New()
	}
	if opts.SingleRenderer == nil {
		opts.SingleRenderer = opts.Renderer
	}
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 10
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		opts:   opts,
		engine: engine,
		logger: logging.ComponentLogger(logger, "web"),
	}

	engine.Use(gin.Recovery(), s.requestID(), s.accessLog())
	engine.GET("/healthz", s.handleHealth)

	api := engine.Group("/api/v1")
	api.Use(s.limitBody())
	api.POST("/qr", s.handleQR)
	api.POST("/bulk", s.handleBulk)

	return s
}

// Handler exposes the engine for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("listen", s.opts.Addr).Msg("http server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
