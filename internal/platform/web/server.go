// Package web provides the HTTP and WebSocket surface of the backend:
// health endpoints, the websocket upgrade route, and graceful shutdown.
package web

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/gurudaths93/planning-poker-backend/internal/config"
	"github.com/gurudaths93/planning-poker-backend/internal/engine"
)

// Server wraps the HTTP server, the engine, and the connection registry.
type Server struct {
	cfg       config.Config
	engine    *engine.Engine
	conns     *engine.ConnRegistry
	logger    *log.Logger
	http      *http.Server
	startedAt time.Time
}

// New builds the server and its router. The engine is not started here;
// ListenAndServe owns the full lifecycle.
func New(cfg config.Config, eng *engine.Engine, conns *engine.ConnRegistry, logger *log.Logger) *Server {
	s := &Server{
		cfg:       cfg,
		engine:    eng,
		conns:     conns,
		logger:    logger,
		startedAt: time.Now(),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)
	router.GET("/ws", s.handleWS)

	s.http = &http.Server{
		Addr:    cfg.Server.Listen,
		Handler: router,
	}
	return s
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowMethods = []string{"GET", "POST"}
	c.AllowHeaders = []string{"*"}
	if allowsAnyOrigin(origins) {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":          "Planning Poker Backend is running!",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"connectedClients": s.conns.Count(),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"uptime":           time.Since(s.startedAt).Seconds(),
		"connectedClients": s.conns.Count(),
	})
}

// ListenAndServe starts the engine and the HTTP server and blocks until a
// termination signal arrives, then shuts both down gracefully.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting server", "address", s.cfg.Server.Listen)
	s.engine.Start()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		// Binding the port is the one fatal startup path.
		s.engine.Stop()
		return err
	case <-done:
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown stops accepting new connections, lets in-flight requests
// finish within the configured timeout, then stops the engine.
func (s *Server) Shutdown() error {
	timeout := time.Duration(s.cfg.Server.ShutdownTimeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.http.Shutdown(ctx)
	s.engine.Stop()
	return err
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.cfg.Server.Listen
}
