package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/artpar/workermeta/internal/shell/api"
	"github.com/artpar/workermeta/internal/shell/store"
)

// =============================================================================
// Server
// =============================================================================

// Server serves the conversion API.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      store.Store
	logger     *slog.Logger
}

// NewServer creates a new server with the given config. History is opened
// only when enabled.
func NewServer(cfg *Config, logger *slog.Logger) (*Server, error) {
	var st store.Store
	if cfg.History.Enabled {
		s, err := store.NewSQLiteStore(cfg.History.DSN)
		if err != nil {
			return nil, &CommandError{
				Op:       "NewServer",
				Err:      err,
				ExitCode: ExitStoreError,
			}
		}
		st = s
		logger.Info("conversion history enabled", "dsn", cfg.History.DSN)
	}

	handler := api.NewHandler(st, logger, cfg.Convert.Strict, Version)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      st,
		logger:     logger,
	}, nil
}

// Start listens and serves until a shutdown signal arrives, ctx is done or
// the listener fails.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.closeStore()
		return &CommandError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		s.closeStore()
		return &CommandError{
			Op:       "Start",
			Err:      err,
			ExitCode: ExitHTTPServerError,
		}
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("initiating graceful shutdown")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	s.closeStore()

	s.logger.Info("shutdown complete")
	return nil
}

func (s *Server) closeStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}
}
