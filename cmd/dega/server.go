package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/degacms/dega/internal/shell/api"
	"github.com/degacms/dega/internal/shell/files"
	"github.com/degacms/dega/internal/shell/search"
	"github.com/degacms/dega/internal/shell/store"
)

// =============================================================================
// Exit Codes
// =============================================================================

const (
	ExitSuccess         = 0
	ExitConfigError     = 1
	ExitDatabaseError   = 2
	ExitSearchError     = 3
	ExitStorageError    = 4
	ExitHTTPServerError = 5
)

// =============================================================================
// Server
// =============================================================================

// Server represents the Dega application server.
type Server struct {
	config     *Config
	httpServer *http.Server
	store      store.Store
	index      search.Index
	logger     *slog.Logger
}

// NewServer creates a new server with the given config.
func NewServer(ctx context.Context, cfg *Config, logger *slog.Logger) (*Server, error) {
	// Connect to the database
	s, err := newStore(ctx, cfg)
	if err != nil {
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitDatabaseError,
		}
	}
	logger.Info("database connected", "driver", cfg.Database.Driver)

	// Connect to the search backend
	idx, err := newIndex(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitSearchError,
		}
	}
	if cfg.Search.Enabled {
		logger.Info("search backend connected", "url", cfg.Search.URL)
	} else {
		logger.Info("search backend disabled, using in-process index")
	}

	// Open file storage
	fs, err := newFileStorage(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, &ServerError{
			Op:       "NewServer",
			Err:      err,
			ExitCode: ExitStorageError,
		}
	}
	logger.Info("file storage ready", "driver", cfg.Files.Driver)

	// Create HTTP handler
	handler := api.NewHandler(api.Config{
		Store:           s,
		Index:           idx,
		Files:           fs,
		Logger:          logger,
		PublicURL:       cfg.Server.PublicURL,
		DefaultClientID: cfg.Tenant.DefaultClientID,
		MaxUploadBytes:  cfg.Server.MaxUploadBytes,
	})

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		store:      s,
		index:      idx,
		logger:     logger,
	}, nil
}

func newStore(ctx context.Context, cfg *Config) (store.Store, error) {
	switch cfg.Database.Driver {
	case "mongo":
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:      cfg.Database.Mongo.URI,
			Database: cfg.Database.Mongo.Database,
			Username: cfg.Database.Mongo.Username,
			Password: cfg.Database.Mongo.Password,
		})
	default:
		return store.NewSQLiteStore(cfg.Database.DSN)
	}
}

func newIndex(ctx context.Context, cfg *Config) (search.Index, error) {
	if !cfg.Search.Enabled {
		return search.NewMemoryIndex(), nil
	}
	return search.NewTypesenseIndex(ctx, cfg.Search.URL, cfg.Search.APIKey)
}

func newFileStorage(ctx context.Context, cfg *Config) (files.Storage, error) {
	if cfg.Files.Driver == "s3" {
		return files.NewS3Storage(ctx, files.S3Config{
			Region:    cfg.Files.S3.Region,
			Bucket:    cfg.Files.S3.Bucket,
			AccessKey: cfg.Files.S3.AccessKey,
			SecretKey: cfg.Files.S3.SecretKey,
		})
	}
	return files.NewLocalStorage(cfg.Files.Dir)
}

// Start starts the server and blocks until shutdown.
func (s *Server) Start(ctx context.Context) error {
	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server",
			"address", s.config.Server.Address())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigCh:
		s.logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		return &ServerError{
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

	// Close database
	if err := s.store.Close(); err != nil {
		s.logger.Error("database close error", "error", err)
	}

	s.logger.Info("shutdown complete")
	return nil
}

// =============================================================================
// Server Error
// =============================================================================

// ServerError represents an error during server operation.
type ServerError struct {
	Op       string
	Err      error
	ExitCode int
}

func (e *ServerError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
