// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dossier/internal/api"
	"github.com/starford/dossier/internal/blog"
	"github.com/starford/dossier/internal/content"
	"github.com/starford/dossier/internal/mcpserver"
	"github.com/starford/dossier/internal/models"
	"github.com/starford/dossier/internal/notes"
	"github.com/starford/dossier/internal/search"
	"github.com/starford/dossier/internal/searchindex"
	"github.com/starford/dossier/internal/sse"
	"github.com/starford/dossier/internal/storage"
	"github.com/starford/dossier/internal/watcher"
)

// runtime holds the components shared by every command.
type runtime struct {
	cfg    *Config
	logger *slog.Logger
	store  *storage.FS
	svc    *content.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup initializes logging, the notes store and the content service.
func (app *application) setup() (*runtime, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_path", cfg.Notes.Path),
		slog.Bool("blog_enabled", cfg.Blog.Enabled),
		slog.String("index_output", cfg.Index.Output),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure notes directory exists.
	if err := os.MkdirAll(cfg.Notes.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create notes dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Notes.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	if cfg.Notes.SeedExamples {
		if n, err := notes.Bootstrap(store, logger); err != nil {
			logger.Warn("seeding example notes failed", slog.String("error", err.Error()))
		} else if n > 0 {
			logger.Info("Seeded example notes", slog.Int("count", n))
		}
	}

	scanner, err := notes.NewScanner(store, cfg.Notes.Exclude, logger)
	if err != nil {
		return nil, fmt.Errorf("init scanner: %w", err)
	}

	engine := search.NewEngine(search.DefaultDictionary(),
		search.WithSnippetLength(cfg.Search.SnippetLength))

	svcOpts := []content.Option{
		content.WithTTL(cfg.Cache.TTL),
		content.WithLogger(logger),
	}
	if cfg.Blog.Enabled {
		client := blog.NewClient(
			blog.WithProxyURL(cfg.Blog.ProxyURL),
			blog.WithFeedTemplate(cfg.Blog.FeedTemplate),
			blog.WithTimeout(cfg.Blog.Timeout),
		)
		svcOpts = append(svcOpts, content.WithBlog(client, cfg.Blog.Handle))
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		svc:    content.NewService(scanner, engine, svcOpts...),
	}, nil
}

// writeArtifact writes entries to the configured index output file.
func (rt *runtime) writeArtifact(entries []models.SearchIndexEntry) error {
	dir, name := filepath.Split(rt.cfg.Index.Output)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	out, err := storage.NewFS(dir)
	if err != nil {
		return fmt.Errorf("init index storage: %w", err)
	}
	if err := searchindex.WriteFile(out, name, entries); err != nil {
		return err
	}
	rt.logger.Info("Search index written",
		slog.String("path", rt.cfg.Index.Output),
		slog.Int("entries", len(entries)))
	return nil
}

// rebuild drops cached content, rebuilds the index and, when configured,
// rewrites the artifact.
func (rt *runtime) rebuild(ctx context.Context) ([]models.SearchIndexEntry, error) {
	rt.svc.Invalidate()
	entries, err := rt.svc.Index(ctx)
	if err != nil {
		return nil, err
	}
	if rt.cfg.Index.RebuildOnChange {
		if err := rt.writeArtifact(entries); err != nil {
			return entries, err
		}
	}
	return entries, nil
}

// BuildIndex scans the notes, fetches blog posts and writes the search index
// artifact once.
func BuildIndex(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.setup()
	if err != nil {
		return err
	}
	if rt.cfg.Index.Output == "" {
		return fmt.Errorf("index output path is required")
	}
	entries, err := rt.svc.Index(ctx)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	return rt.writeArtifact(entries)
}

// ServeMCP serves the MCP tools on stdin/stdout until the client disconnects.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := app.setup()
	if err != nil {
		return err
	}
	rt.logger.Info("MCP server starting on stdio", slog.String("version", app.version))
	return mcpserver.New(rt.svc, app.version).ServeStdio(ctx)
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.setup()
	if err != nil {
		return err
	}
	cfg, logger := rt.cfg, rt.logger

	if cfg.Index.RebuildOnChange {
		if _, err := rt.rebuild(ctx); err != nil {
			logger.Warn("initial index build failed", slog.String("error", err.Error()))
		}
	}

	// SSE broker.
	broker := sse.NewBroker(sse.DefaultIndexThrottle)
	defer broker.Close()

	apiRouter := api.NewRouter(rt.svc, api.RouterConfig{
		MaxResults:        cfg.Search.MaxResults,
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		Burst:             cfg.RateLimit.Burst,
		Events:            broker,
	})

	// Build chi router.
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
	r.Get("/health/ready", readyHandler(rt))

	r.Mount("/api", apiRouter)
	r.Get("/"+searchindex.DefaultArtifactName, api.IndexArtifact(rt.svc))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(runCtx)

	// Watch the notes root: announce each change, rebuild once it settles.
	g.Go(func() error {
		w := watcher.New(cfg.Notes.Path, logger,
			watcher.OnChange(broker.PublishNoteEvent),
			watcher.OnSettle(func(ctx context.Context, changes []watcher.Change) {
				entries, err := rt.rebuild(ctx)
				if err != nil {
					logger.Warn("index rebuild failed", slog.String("error", err.Error()))
					if entries == nil {
						return
					}
				}
				logger.Info("Index rebuilt",
					slog.Int("changes", len(changes)),
					slog.Int("entries", len(entries)))
				broker.PublishIndexEvent(len(entries))
			}),
		)
		if err := w.Run(gCtx); err != nil {
			logger.Warn("watcher unavailable, changes need a restart", slog.String("error", err.Error()))
		}
		return nil
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
		stop()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// readyHandler reports ready once the notes root is reachable, along with
// what the content caches currently hold.
func readyHandler(rt *runtime) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok", "cache": rt.svc.Stats()}
		status := http.StatusOK
		if _, err := os.Stat(rt.store.Root()); err != nil {
			body["status"] = "unavailable"
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
