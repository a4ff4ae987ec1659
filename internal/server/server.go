// Package server implements the HTTP and WebSocket server for relaychat.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Tyrowin/relaychat/internal/channel"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Server bundles the channel registry, the connection hub, and the
// coordinator that links them, together with the HTTP surface.
type Server struct {
	cfg         Config
	log         *slog.Logger
	registry    *channel.Registry
	hub         *Hub
	coordinator *Coordinator
	origins     *originPolicy
	upgrader    websocket.Upgrader
}

// New builds a Server around an existing registry. The hub is created but
// not started; call Run, or StartHub in tests.
func New(cfg Config, registry *channel.Registry, log *slog.Logger) *Server {
	cfg = sanitizeConfig(cfg)
	hub := NewHub(cfg, log)
	origins := newOriginPolicy(cfg.AllowedOrigins, log)

	s := &Server{
		cfg:         cfg,
		log:         log,
		registry:    registry,
		hub:         hub,
		coordinator: NewCoordinator(registry, hub, log),
		origins:     origins,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     origins.checkOrigin,
	}
	return s
}

// Hub returns the connection hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Registry returns the channel registry.
func (s *Server) Registry() *channel.Registry {
	return s.registry
}

// StartHub starts the hub's event loop in a separate goroutine.
func (s *Server) StartHub() {
	go s.hub.Run()
	s.log.Info("Hub started and ready to manage WebSocket connections")
}

// Run serves HTTP on the configured port until ctx is cancelled, then shuts
// down the HTTP server and the hub.
func (s *Server) Run(ctx context.Context) error {
	gin.SetMode(s.cfg.GinMode)
	s.StartHub()

	httpServer := CreateServer(s.cfg.Port, s.SetupRoutes())

	errChan := make(chan error, 1)
	go func() {
		if err := StartServer(httpServer, s.log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		s.log.Info("Shutting down gracefully")
	case serveErr = <-errChan:
	}

	shutdownErr := ShutdownServer(httpServer, s.cfg.ShutdownTimeout, s.log)
	hubErr := s.hub.Shutdown(s.cfg.ShutdownTimeout)
	return errors.Join(serveErr, shutdownErr, hubErr)
}
