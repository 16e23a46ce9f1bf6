// Package app owns the process-wide state: configuration, logger, store and
// HTTP server. An App is built once at startup and torn down on shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"weekly-agenda-api/internal/config"
	"weekly-agenda-api/internal/handler"
	"weekly-agenda-api/internal/middleware"
	"weekly-agenda-api/internal/router"
	"weekly-agenda-api/internal/store"
	"weekly-agenda-api/internal/store/mongo"
	"weekly-agenda-api/internal/store/postgres"
)

type App struct {
	cfg    config.Config
	logger zerolog.Logger
	store  store.Store
	server *http.Server
}

// OpenStore connects to the backend named by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.URI())
	case config.DriverMongo:
		return mongo.Open(ctx, cfg.URI(), cfg.Name)
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
}

// New wires the HTTP stack around st. The App takes ownership of st. The
// rate limiter's sweeper stops when ctx is done.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger, st store.Store) *App {
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled() {
		limiter = middleware.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	routes := router.New(router.Options{
		Handler: handler.New(st, cfg.Auth.JWTSecret),
		Logger:  logger,
		Secret:  cfg.Auth.JWTSecret,
		Limiter: limiter,
	})

	return &App{
		cfg:    cfg,
		logger: logger,
		store:  st,
		server: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           routes,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run listens on the configured address and serves until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		_ = a.close()
		return fmt.Errorf("listen %s: %w", a.server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts the server down within
// the configured timeout and closes the store.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info().
			Str("addr", ln.Addr().String()).
			Str("store", a.cfg.Database.Driver).
			Str("environment", a.cfg.Environment).
			Msg("server listening")
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if cerr := a.close(); cerr != nil {
		a.logger.Error().Err(cerr).Msg("close store")
	}
	if err == nil {
		a.logger.Info().Msg("server stopped")
	}
	return err
}

func (a *App) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.store.Close(ctx)
}
