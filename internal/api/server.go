package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/flipdot/flipdot-studio/internal/metrics"
	"github.com/flipdot/flipdot-studio/internal/studio"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cancel     context.CancelFunc
}

type ServerConfig struct {
	Port      int
	ExportDir string
	Studio    studio.StudioService
	Config    ConfigStore
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	StartTime time.Time
	Version   string
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)
	// Cancelled on shutdown so that preview streams, which outlive
	// hijacked connections, stop too.
	baseCtx, cancel := context.WithCancel(context.Background())

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
			BaseContext:  func(net.Listener) context.Context { return baseCtx },
		},
		logger: cfg.Logger,
		cancel: cancel,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	s.cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
