package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/farol-inclusivo/farol-matcher/internal/compatibility"
	"github.com/farol-inclusivo/farol-matcher/internal/farol"
)

const (
	DefaultListen          = ":8080"
	defaultUpstreamTimeout = 15 * time.Second
	shutdownTimeout        = 10 * time.Second
)

type Config struct {
	Listen          string        `mapstructure:"listen" validate:"required"`
	UpstreamTimeout time.Duration `mapstructure:"upstream-timeout" validate:"gte=0"`
	Debug           bool          `mapstructure:"-"`
}

// Server exposes the compatibility calculator over HTTP. Every request gets
// its own compatibility.Service so concurrent callers never share a profile.
type Server struct {
	cfg        Config
	calculator *compatibility.Calculator
	upstream   *farol.Client
	logger     *zap.Logger
	engine     *gin.Engine
}

// New builds the server. upstream may be nil, in which case /api/v1/matches
// answers 503.
func New(cfg Config, calculator *compatibility.Calculator, upstream *farol.Client, logger *zap.Logger) *Server {
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = defaultUpstreamTimeout
	}
	if calculator == nil {
		calculator = compatibility.NewCalculator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:        cfg,
		calculator: calculator,
		upstream:   upstream,
		logger:     logger,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(requestID(), accessLog(s.logger), recovery(s.logger))

	engine.GET("/healthz", s.health)

	api := engine.Group("/api/v1")
	{
		api.POST("/compatibility", s.scoreJob)
		api.POST("/compatibility/batch", s.scoreBatch)
		api.GET("/matches", s.matches)
	}

	return engine
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("listen", s.cfg.Listen))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.cfg.Listen, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
