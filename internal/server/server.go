// Package server wires the wechat session into an HTTP server, showing the
// intended embedding: the session is held for the process lifetime so its
// token cache survives across requests.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wxkit/wechat-oauth/internal/config"
	"github.com/wxkit/wechat-oauth/internal/logger"
	"github.com/wxkit/wechat-oauth/internal/server/handler"
	"github.com/wxkit/wechat-oauth/internal/server/middleware"
	"github.com/wxkit/wechat-oauth/wechat"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

// Server serves the OAuth flow routes over HTTP.
type Server struct {
	config  *config.Config
	handler *handler.Handler
	http    *http.Server
}

// NewServer creates the HTTP server around the given session.
func NewServer(cfg *config.Config, session *wechat.Session) *Server {
	h := handler.NewHandler(&cfg.WeChat, session)

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", h.HandleLogin)
	mux.HandleFunc("/auth/callback", h.HandleCallback)
	mux.HandleFunc("/auth/profile", h.HandleProfile)
	mux.HandleFunc("/healthz", h.HandleHealth)

	wrapped := middleware.RequestLogger(
		middleware.CORSWithOrigins(cfg.Server.AllowOrigins)(mux),
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	return &Server{
		config:  cfg,
		handler: h,
		http:    &http.Server{
			Addr:    addr,
			Handler: wrapped,
		},
	}
}

// Start runs the server until it is shut down. ErrServerClosed from a
// graceful shutdown is not reported as an error.
func (s *Server) Start() error {
	logger.Info("Starting server", zap.String("address", s.http.Addr))

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests, bounded by shutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down server", zap.Duration("timeout", shutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	return nil
}

// Module provides the HTTP server dependencies
var Module = fx.Module("server",
	fx.Provide(
		NewServer,
	),
	fx.Invoke(func(lc fx.Lifecycle, srv *Server) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := srv.Start(); err != nil {
						logger.Error("Server stopped unexpectedly", zap.Error(err))
					}
				}()
				return nil
			},
			OnStop: srv.Shutdown,
		})
	}),
)
