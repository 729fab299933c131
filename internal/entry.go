// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/spicerack/internal/api"
	"github.com/starford/spicerack/internal/catalog"
	"github.com/starford/spicerack/internal/library"
	"github.com/starford/spicerack/internal/mcpserver"
	"github.com/starford/spicerack/internal/mirror"
	"github.com/starford/spicerack/internal/spice"
	"github.com/starford/spicerack/internal/sse"
	"github.com/starford/spicerack/internal/storage"
)

const watchDebounce = 300 * time.Millisecond

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Any("library_roots", cfg.Library.Roots),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure library roots exist.
	for _, root := range cfg.Library.Roots {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return fmt.Errorf("create library root: %w", err)
		}
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Library.Roots, cfg.Library.Extensions)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite mirror.
	db, err := mirror.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init mirror: %w", err)
	}
	defer db.Close()

	// Build the library index and catalog service.
	parser := spice.NewLibraryParser(cfg.Library.UnitSuffixes)
	ix := library.NewIndex(store, parser, logger)
	svc := catalog.NewService(store, ix, db, logger)

	// Run initial index build.
	if _, err := svc.Reindex(ctx); err != nil {
		logger.Warn("initial reindex failed", slog.String("error", err.Error()))
	}

	if app.mcpStdio {
		// MCP stdio mode: no HTTP server, no watcher.
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(svc).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	svc.OnLibraryAdded(broker.PublishLibraryCreated)

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch library roots and rebuild the index on changes.
	g.Go(func() error {
		return library.Watch(gCtx, cfg.Library.Roots, watchDebounce, logger, func(ctx context.Context) error {
			stats, err := svc.Reindex(ctx)
			if err != nil {
				return err
			}
			broker.PublishIndexUpdated(stats)
			return nil
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
