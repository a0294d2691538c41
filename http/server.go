// Package http serves the estimator's HTML form, JSON API, prediction feed and metrics.
package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"airbnbprice/config"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer wires routes and middleware. Handlers read the model, feed and logger
// installed with SetModel, SetFeed and SetLogger.
func NewServer(cfg config.HTTPConfig, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()
	RegisterHandlers(mux)
	RegisterUI(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	rateLimit, err := RateLimitMiddleware(cfg.RateLimit)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	chain := Chain(
		RecoveryMiddleware(logger),
		LoggerMiddleware(logger),
		SecurityHeadersMiddleware,
		CORSMiddleware(cfg.AllowedOrigins),
		rateLimit,
		RequestSizeMiddleware(cfg.MaxBodyBytes),
		TimeoutMiddleware(cfg.Timeout),
		MetricsMiddleware,
	)

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           chain(mux),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.Timeout,
			// Slightly above the handler timeout so TimeoutHandler can answer first.
			WriteTimeout: cfg.Timeout + 5*time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}, nil
}

// Start serves until Stop is called. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("http server listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("feed", "/api/ws/predictions"),
	)
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
