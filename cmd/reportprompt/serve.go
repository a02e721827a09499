package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/api"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/config"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/formula"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/metadata"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/observability"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/session"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/store"
	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/wizard"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the report prompt HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func openStore(cfg *config.Config) (store.DefinitionStore, func() error, error) {
	switch cfg.DatabaseDriver {
	case "postgres":
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		return store.NewPostgresStore(db), db.Close, nil
	default:
		db, err := sql.Open("sqlite", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		s, err := store.NewSQLiteStore(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate sqlite: %w", err)
		}
		return s, db.Close, nil
	}
}

func newFormulas(cfg *config.Config, logger *slog.Logger) (*formula.Registry, error) {
	reg, err := formula.NewRegistry(formula.WithLogger(logger.With("component", "formula")))
	if err != nil {
		return nil, err
	}
	if err := reg.RegisterAll(cfg.Formulas); err != nil {
		return nil, err
	}
	return reg, nil
}

func hostSettings(cfg *config.Config) metadata.HostSettings {
	return metadata.HostSettings{
		Interface:        cfg.Host.XMLRPCInterface,
		Port:             cfg.Host.XMLRPCPort,
		PostgresHost:     cfg.Host.PostgresHost,
		PostgresPort:     cfg.Host.PostgresPort,
		PostgresLogin:    cfg.Host.PostgresLogin,
		PostgresPassword: cfg.Host.PostgresPassword,
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	defs, closeDB, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeDB() }()

	reg, err := newFormulas(cfg, logger)
	if err != nil {
		return err
	}
	parser := report.NewParser(cfg.MaxParams, reg)

	var caches session.CacheFactory
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		caches = func(id string) session.Cache {
			return session.NewRedisCache(rdb, id, cfg.SessionTTL)
		}
	}
	sessions := session.NewManager(parser, cfg.SessionTTL, caches)
	go sessions.Run(ctx, time.Minute)

	obsCfg := observability.DefaultConfig()
	obsCfg.Enabled = cfg.OTelEnabled
	obsCfg.OTLPEndpoint = cfg.OTelEndpoint
	obs, err := observability.New(ctx, obsCfg)
	if err != nil {
		return err
	}

	wiz := wizard.New(sessions, defs, metadata.NewClient(cfg.PentahoServerURL),
		wizard.WithHostSettings(hostSettings(cfg)),
		wizard.WithObservability(obs),
	)

	limiter := api.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewServer(wiz, sessions, limiter).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("report prompt listening",
			"addr", srv.Addr,
			"pentaho", cfg.PentahoServerURL,
			"database", cfg.DatabaseDriver,
			"redis", cfg.RedisAddr != "",
			"max_params", cfg.MaxParams,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	return obs.Shutdown(shutdownCtx)
}
