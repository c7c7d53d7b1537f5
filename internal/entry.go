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
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/api"
	"github.com/starford/dagaz/internal/build"
	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/postservice"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
)

// site bundles everything a run needs once the configuration is resolved.
type site struct {
	cfg      *Config
	logger   *slog.Logger
	pipeline *build.Pipeline
	db       *index.DB
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup initializes logging, storage, the pipeline, and the post index.
// logTo is where structured logs go; MCP mode must keep stdout clean for
// the stdio transport.
func setup(cfg *Config, logTo io.Writer) (*site, error) {
	logger := slog.New(slog.NewJSONHandler(logTo, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("source", cfg.Site.Source),
		slog.String("output", cfg.Site.Output),
		slog.String("script", cfg.Site.Script),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	source, err := storage.NewFS(cfg.Site.Source)
	if err != nil {
		return nil, fmt.Errorf("open source dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Site.BlogsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	output, err := storage.NewFS(cfg.Site.Output)
	if err != nil {
		return nil, fmt.Errorf("open output dir: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	return &site{
		cfg:      cfg,
		logger:   logger,
		pipeline: build.New(source, output, cfg.Site.Script, logger),
		db:       db,
	}, nil
}

// rebuild runs the full sequential pipeline and refreshes the post index.
func (s *site) rebuild() ([]models.Post, error) {
	posts, err := s.pipeline.Run()
	if err != nil {
		return nil, err
	}
	if err := index.Sync(s.db, posts, s.logger); err != nil {
		s.logger.Warn("index sync failed", slog.String("error", err.Error()))
	}
	return posts, nil
}

// RunBuild executes one build of the site and exits.
//
// Warnings (missing images, missing script, documents without metadata) do
// not fail the run; only unexpected I/O errors do.
func RunBuild(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := setup(app.config, os.Stdout)
	if err != nil {
		return err
	}
	defer s.db.Close()

	_, err = s.rebuild()
	return err
}

// RunServe builds the site, then serves the output tree with a read-only
// JSON API and rebuilds on source changes until the context is cancelled.
func RunServe(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	s, err := setup(cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer s.db.Close()

	if _, err := s.rebuild(); err != nil {
		return err
	}

	broker := sse.NewBroker(500 * time.Millisecond)
	defer broker.Close()

	// The watcher and the HTTP API never build concurrently: the pipeline
	// is sequential by design and the destination asset reset is only safe
	// with a single writer.
	var buildMu sync.Mutex
	rebuild := func() {
		buildMu.Lock()
		defer buildMu.Unlock()
		broker.PublishBuildEvent("started", 0)
		posts, err := s.rebuild()
		if err != nil {
			s.logger.Error("rebuild failed", slog.String("error", err.Error()))
			return
		}
		broker.PublishBuildEvent("completed", len(posts))
	}

	siteFS, err := storage.NewFS(cfg.Site.BlogsDir())
	if err != nil {
		return fmt.Errorf("open site dir: %w", err)
	}
	svc := postservice.NewService(siteFS, s.db)
	apiRouter := api.NewRouter(svc, http.HandlerFunc(broker.ServeHTTP))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	// The generated site itself.
	r.Handle("/*", http.FileServer(http.Dir(cfg.Site.Output)))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	s.logger.Info("preview server starting", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the vault and rebuild on change.
	g.Go(func() error {
		return build.Watch(gCtx, cfg.Site.Source, s.logger, rebuild)
	})

	// Serve the preview.
	g.Go(func() error {
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
			s.logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			s.logger.Info("context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Error("application error", slog.String("error", err.Error()))
		return err
	}

	s.logger.Info("preview server stopped")
	return nil
}

// RunMCP builds the site once, then serves the MCP tools over stdio.
// Logs go to stderr so the transport owns stdout.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	s, err := setup(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer s.db.Close()

	if _, err := s.rebuild(); err != nil {
		return err
	}

	siteFS, err := storage.NewFS(cfg.Site.BlogsDir())
	if err != nil {
		return fmt.Errorf("open site dir: %w", err)
	}
	svc := postservice.NewService(siteFS, s.db)

	var buildMu sync.Mutex
	srv := mcpserver.New(svc, func() (int, error) {
		buildMu.Lock()
		defer buildMu.Unlock()
		posts, err := s.rebuild()
		if err != nil {
			return 0, err
		}
		return len(posts), nil
	})

	return srv.ServeStdio()
}
