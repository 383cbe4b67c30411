// Package app wires the gatehouse server runtime: config, logging,
// persistence, the auth HTTP surface, the downstream gateway, and
// metrics.
//
// It is intentionally small and deterministic to keep behavior
// predictable under restarts and config drift.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gatehouse/cmd/internal/auth"
	authapi "gatehouse/cmd/internal/auth/api"
	"gatehouse/cmd/internal/gateway"
	"gatehouse/cmd/security/password"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

// App is the gatehouse server runtime.
type App struct {
	cfg Config
	log Logger

	store Store

	dbPool    *pgxpool.Pool
	dbEnabled bool

	authSvc *auth.Service
	authAPI *authapi.Handler
	authCfg authapi.Config

	gateway *gateway.Proxy
	metrics *Metrics
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	st, pool, authStore, dbEnabled, err := newStore(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	hasher, err := password.FromEnv()
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}

	authSvc := auth.NewService(log, authStore, hasher)

	authCfg := authapi.LoadConfigFromEnv()
	authAPI, err := authapi.NewHandler(log, authSvc, authCfg)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}

	gw, err := gateway.NewProxyFromEnv(log)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		store:     st,
		dbPool:    pool,
		dbEnabled: dbEnabled,
		authSvc:   authSvc,
		authAPI:   authAPI,
		authCfg:   authCfg,
		gateway:   gw,
		metrics:   NewMetrics(),
	}, nil
}

// Handler builds the full middleware chain around the route mux.
// Chain, outermost first: request logging, metrics, security headers,
// session attachment, routes.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.authAPI, a.gateway, a.metrics)

	var h http.Handler = mux
	h = authapi.AttachSession(a.log, a.authSvc, a.authCfg)(h)
	h = WithSecurityHeaders(h)
	h = a.metrics.Instrument(h)
	h = WithRequestLogging(h, a.log)
	return h
}

// Run starts the HTTP server and blocks until context cancellation or
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled, "gateway_enabled", a.gateway != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// newStore decides between Postgres-backed persistence and the in-memory
// dev store.
func newStore(ctx context.Context, cfg Config, log Logger) (Store, *pgxpool.Pool, auth.Store, bool, error) {
	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		return nopStore{}, nil, auth.NewMemoryStore(), false, nil
	}

	if cfg.RunMigrations {
		if err := MigrateDB(ctx, cfg); err != nil {
			return nil, nil, nil, false, err
		}
		log.Info("db.migrations.applied")
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, false, err
	}

	log.Info("db.enabled.postgres_store")

	// Ownership model: app owns the pool lifecycle; the store never
	// closes it.
	pgStore, err := auth.NewPostgresStore(pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, false, err
	}

	return dbStore{pool: pool}, pool, pgStore, true, nil
}

type dbStore struct {
	pool *pgxpool.Pool
}

func (s dbStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
