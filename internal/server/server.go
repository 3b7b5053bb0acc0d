// Package server owns the HTTP server lifecycle: startup, static file
// serving and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/atomclub/attendance/internal/bootstrap"
	"github.com/atomclub/attendance/internal/cache"
	"github.com/atomclub/attendance/internal/config"
)

// Server holds the state for the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	dbPool *pgxpool.Pool
	cache  *cache.Cache
	logger zerolog.Logger
	http   *http.Server
}

// NewServer creates and initializes a new server instance
func NewServer() (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	dbPool, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, dbPool, lgr)
	if err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	router := bootstrap.SetupRouter(cfg, dbPool, deps, lgr)
	setupStaticFileServing(router, cfg, lgr)

	return &Server{
		config: cfg,
		router: router,
		dbPool: dbPool,
		cache:  deps.Cache,
		logger: lgr,
	}, nil
}

// setupStaticFileServing serves stored proof documents under /uploads
func setupStaticFileServing(router *gin.Engine, cfg *config.Config, lgr zerolog.Logger) {
	uploadPath := cfg.Server.StoragePath
	if _, err := os.Stat(uploadPath); os.IsNotExist(err) {
		if err := os.MkdirAll(uploadPath, 0o755); err != nil {
			lgr.Error().Err(err).Str("path", uploadPath).Msg("Failed to create uploads directory")
			return
		}
	}
	router.Static("/uploads", uploadPath)
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = err
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Cache close error")
		}
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}

	s.logger.Info().Msg("Server shutdown complete")
	if shutdownErr != nil {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
