// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/rolodex/internal/api"
	"github.com/starford/rolodex/internal/contactstore"
	"github.com/starford/rolodex/internal/coordinator"
	"github.com/starford/rolodex/internal/dataservice"
	"github.com/starford/rolodex/internal/fixture"
	"github.com/starford/rolodex/internal/mcpserver"
	"github.com/starford/rolodex/internal/presenter"
	"github.com/starford/rolodex/internal/sse"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.output == nil {
		app.output = os.Stdout
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func newStore(cfg *Config, logger *slog.Logger) (*contactstore.Store, error) {
	client, err := dataservice.NewClient(dataservice.ClientOptions{
		BaseURL:   cfg.Service.BaseURL,
		Token:     cfg.Service.Token,
		Timeout:   cfg.Service.Timeout,
		RateLimit: cfg.Service.RateLimit,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init data service client: %w", err)
	}
	return contactstore.New(client, logger), nil
}

// readiness reports the cache a ready server is answering from. Revision
// changes whenever a refresh sees different contents.
type readiness struct {
	Status   string `json:"status"`
	Contacts int    `json:"contacts"`
	Revision string `json:"revision"`
}

// newRootRouter mounts the API under /api next to the health checks.
func newRootRouter(store *contactstore.Store, apiRouter http.Handler) chi.Router {
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
		if !store.Loaded() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(readiness{
			Status:   "ok",
			Contacts: store.Len(),
			Revision: store.Revision(),
		})
	})

	r.Mount("/api", apiRouter)
	return r
}

// Run starts the HTTP/SSE server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("service_url", cfg.Service.BaseURL),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := newStore(cfg, logger)
	if err != nil {
		return err
	}

	broker := sse.NewBroker(30 * time.Second)
	defer broker.Close()
	broadcast := sse.NewPresenter(broker)

	// Initial load; the API retries lazily if the service is not up yet.
	if err := coordinator.New(store, broadcast, logger).Load(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	h := api.NewHandler(store, broadcast, logger)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: newRootRouter(store, apiRouter),
	}
	// Open event streams would otherwise hold Shutdown until its timeout.
	httpServer.RegisterOnShutdown(broker.Close)

	return serve(ctx, logger, httpServer)
}

// RunFixture starts the development contacts data service.
func RunFixture(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	db, err := fixture.Open(cfg.Fixture.SQLitePath)
	if err != nil {
		return fmt.Errorf("init fixture db: %w", err)
	}
	defer db.Close()

	logger.Info("Fixture configuration loaded",
		slog.String("address", cfg.Fixture.Address()),
		slog.String("sqlite_path", cfg.Fixture.SQLitePath))

	httpServer := &http.Server{
		Addr:    cfg.Fixture.Address(),
		Handler: fixture.NewRouter(db, logger),
	}
	return serve(ctx, logger, httpServer)
}

// RunMCP serves the MCP tools over stdio. Logs go to stderr so they never
// mix with the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	store, err := newStore(cfg, logger)
	if err != nil {
		return err
	}
	if err := coordinator.New(store, presenter.NewRecorder(), logger).Load(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(store, logger).ServeStdio()
}

// serve runs srv until a signal arrives or ctx is cancelled, then shuts it
// down gracefully.
func serve(ctx context.Context, logger *slog.Logger, srv *http.Server) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
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
