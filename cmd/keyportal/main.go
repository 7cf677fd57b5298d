package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/keyportal/internal/adapters/api"
	"github.com/poyrazK/keyportal/internal/adapters/repository"
	"github.com/poyrazK/keyportal/internal/adapters/session"
	"github.com/poyrazK/keyportal/internal/core/ports"
	"github.com/poyrazK/keyportal/internal/core/services"
	"github.com/poyrazK/keyportal/internal/infrastructure/config"
	"github.com/poyrazK/keyportal/internal/infrastructure/logging"
	"github.com/poyrazK/keyportal/internal/infrastructure/secret"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:          "keyportal",
		Short:        "Issue API keys and serve the admin console API",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags(), cfgFile)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, os.Stdout)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "path to a keyportal.yaml config file")
	applyServeFlags(cmd.Flags())
	return cmd
}

// applyServeFlags registers the flags config.Load binds onto config keys.
func applyServeFlags(f *pflag.FlagSet) {
	d := config.Defaults()
	f.String("addr", d["http.addr"].(string), "HTTP listen address")
	f.String("database-url", "", "PostgreSQL connection URL")
	f.Bool("migrate", true, "apply schema migrations on startup")
	f.String("session-backend", config.SessionBackendMemory, "admin session store: memory or redis")
	f.Duration("session-ttl", 0, "admin session lifetime, 0 keeps sessions until restart")
	f.String("redis-addr", d["redis.addr"].(string), "Redis address for the redis session backend")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.String("log-format", "json", "log format: json or text")
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, out)
	slog.SetDefault(logger)

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		logger.Warn("could not ping database", "error", err)
	}

	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema migrations applied")
	}

	handler, cleanup, err := newApp(ctx, cfg, db, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return serve(ctx, srv, cfg.HTTP.ShutdownTimeout, logger)
}

// newApp wires storage, sessions and services into the HTTP handler. The
// returned cleanup releases the session backend.
func newApp(ctx context.Context, cfg *config.Config, db *sql.DB, logger *slog.Logger) (*api.APIHandler, func(), error) {
	repo := repository.NewPostgresRepository(db)
	tokens := secret.NewGenerator()

	vault, err := secret.NewBcryptVault(cfg.Password.Cost)
	if err != nil {
		return nil, nil, err
	}

	var store ports.SessionStore
	cleanup := func() {}
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		rs := session.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rs.Ping(ctx); err != nil {
			logger.Warn("could not ping redis session store", "addr", cfg.Redis.Addr, "error", err)
		}
		store = rs
		cleanup = func() {
			if err := rs.Close(); err != nil {
				logger.Error("failed to close redis session store", "error", err)
			}
		}
	default:
		ms := session.NewMemoryStore()
		if cfg.Session.TTL > 0 {
			go ms.Run(ctx, cfg.Session.SweepInterval)
		}
		store = ms
	}

	registry := services.NewSessionRegistry(store, tokens, cfg.Session.TTL)
	creds := services.NewCredentialService(repo, tokens, cfg.Credential.TTL, logger)
	admins := services.NewAdminService(repo, vault, registry, logger)

	h := api.NewAPIHandler(creds, admins, logger)
	h.AddHealthCheck("sessions", registry.Ping)

	logger.Info("services ready",
		"session_backend", cfg.Session.Backend,
		"session_ttl", cfg.Session.TTL,
		"credential_ttl", cfg.Credential.TTL,
	)
	return h, cleanup, nil
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("management API listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
