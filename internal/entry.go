// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tickoff/internal/api"
	"github.com/starford/tickoff/internal/configwatch"
	"github.com/starford/tickoff/internal/host"
	"github.com/starford/tickoff/internal/mcpserver"
	"github.com/starford/tickoff/internal/persist"
	"github.com/starford/tickoff/internal/sse"
	"github.com/starford/tickoff/internal/storage"
	"github.com/starford/tickoff/internal/tasklist"
	"github.com/starford/tickoff/internal/tui"
	"github.com/starford/tickoff/internal/widget"
	pkgconfig "github.com/starford/tickoff/pkg/config"
)

func build(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the JSON logger. It writes to app.log_file when set and to
// fallback otherwise. The returned LevelVar can be changed while running.
func newLogger(cfg *Config, fallback io.Writer) (*slog.Logger, *slog.LevelVar, func(), error) {
	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)

	out, closeFn := fallback, func() {}
	if cfg.App.LogFile != "" {
		f, err := os.OpenFile(cfg.App.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closeFn = f, func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	return logger, level, closeFn, nil
}

// openWidget opens the configured store and loads the list from it.
func openWidget(cfg *Config, logger *slog.Logger) (*widget.Widget, storage.Provider, error) {
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	w := widget.New(persist.New(store, logger), logger)
	if err := w.Load(); err != nil {
		_ = storage.Close(store)
		return nil, nil, fmt.Errorf("load tasks: %w", err)
	}
	return w, store, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := build(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, level, closeLog, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	w, store, err := openWidget(cfg, logger)
	if err != nil {
		return err
	}
	defer storage.Close(store)

	logger.Info("Tasks loaded", slog.Int("count", w.Len()))

	// SSE broker.
	broker := sse.NewBroker(time.Second)
	defer broker.Close()
	w.OnChange(func(ch tasklist.Change) {
		sum, err := persist.Checksum(w.Tasks())
		if err != nil {
			logger.Warn("sse: checksum failed", slog.String("error", err.Error()))
		}
		broker.PublishChange(ch.Op, sse.Snapshot{Count: w.Len(), Checksum: sum})
	})

	loop := host.NewLoop(w)
	defer loop.Close()

	apiRouter := api.NewRouter(loop, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
	r.Get("/health/ready", func(rw http.ResponseWriter, req *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		if err := loop.Do(req.Context(), func(*widget.Widget) error { return nil }); err != nil {
			rw.WriteHeader(http.StatusServiceUnavailable)
			_, _ = rw.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api; the SSE stream is /api/events.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the log level when the config file changes.
	if app.configPath != "" {
		if _, err := os.Stat(app.configPath); err == nil {
			g.Go(func() error {
				return configwatch.Watch(gCtx, app.configPath, 200*time.Millisecond, logger, func() error {
					next := NewDefaultConfig()
					if err := pkgconfig.Load(app.configPath, next); err != nil {
						return err
					}
					level.Set(next.App.LogLevel)
					return nil
				})
			})
		}
	}

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
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the config watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunTUI starts the terminal UI. Logs go to app.log_file, or nowhere.
func RunTUI(ctx context.Context, opts ...Option) error {
	app, err := build(opts)
	if err != nil {
		return err
	}
	logger, _, closeLog, err := newLogger(app.config, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	w, store, err := openWidget(app.config, logger)
	if err != nil {
		return err
	}
	defer storage.Close(store)

	return tui.Run(w, logger, tea.WithContext(ctx))
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := build(opts)
	if err != nil {
		return err
	}
	logger, _, closeLog, err := newLogger(app.config, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	w, store, err := openWidget(app.config, logger)
	if err != nil {
		return err
	}
	defer storage.Close(store)

	loop := host.NewLoop(w)
	defer loop.Close()

	logger.Info("mcp: serving on stdio", slog.Int("tasks", w.Len()))
	if err := mcpserver.New(loop).ServeStdio(); err != nil {
		return fmt.Errorf("mcp: serve: %w", err)
	}
	return nil
}
