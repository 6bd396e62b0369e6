// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the page server. It loads
// configuration, connects to services, sets up routing, and starts the
// HTTP server with graceful shutdown support.
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
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"pagebuilder/internal/cache"
	"pagebuilder/internal/config"
	"pagebuilder/internal/database"
	"pagebuilder/internal/handlers"
	"pagebuilder/internal/pages"
	"pagebuilder/internal/router"
	"pagebuilder/internal/store"
)

func main() {
	cmd := &cli.Command{
		Name:  "pagebuilder",
		Usage: "Hierarchical CMS page service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server",
				Action: serve,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "memory",
						Usage:   "Keep pages in process memory instead of PostgreSQL",
						Sources: cli.EnvVars("PAGES_IN_MEMORY"),
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations and exit",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the default structured logger:
// text in development, JSON elsewhere.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())
	return cfg, nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Migrate(db)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(cfg, cmd.Bool("memory"))
	if err != nil {
		return err
	}
	defer closeRepo()

	resolver := router.NewResolver(nil)
	var svcOpts []pages.Option
	var pageCache handlers.PageCache

	// Valkey is optional: without it pages are always read from the store.
	if cfg.CacheEnabled() {
		client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return err
		}
		defer client.Close()

		pc := cache.NewPageCache(client, cfg.PageCacheTTL)
		pageCache = pc
		svcOpts = append(svcOpts, pages.WithInvalidator(pc))
	} else {
		slog.Warn("valkey not configured, page cache disabled")
	}

	svc := pages.NewService(repo, resolver, svcOpts...)
	r := router.New(handlers.NewPages(svc, pageCache, router.PageURL))
	resolver.Bind(r)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// openRepository returns the page repository and its cleanup function.
// The PostgreSQL store is migrated on start and seeded in development.
func openRepository(cfg *config.Config, memory bool) (pages.Repository, func(), error) {
	if memory {
		slog.Warn("using in-memory page store, data is lost on exit")
		return store.NewMemoryPageStore(), func() {}, nil
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}
	if err := prepare(db, cfg.IsDev()); err != nil {
		db.Close()
		return nil, nil, err
	}
	return store.NewPageStore(db), func() { db.Close() }, nil
}

func prepare(db *sql.DB, seed bool) error {
	if err := database.Migrate(db); err != nil {
		return err
	}
	if seed {
		return database.Seed(db)
	}
	return nil
}
