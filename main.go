// Command forum-go runs the forum API: users, topics, threads and nested
// contributions behind JWT authentication.
//
// @title Forum API
// @version 1.0
// @description Topics, threads and nested contributions with JWT authentication.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/user/forum-go/auth"
	"github.com/user/forum-go/background"
	"github.com/user/forum-go/config"
	"github.com/user/forum-go/contributions"
	"github.com/user/forum-go/db"
	"github.com/user/forum-go/events"
	"github.com/user/forum-go/logger"
	"github.com/user/forum-go/middleware"
	"github.com/user/forum-go/seed"
	"github.com/user/forum-go/server"
	"github.com/user/forum-go/storage"
	"github.com/user/forum-go/storage/memory"
	"github.com/user/forum-go/storage/postgres"
	"github.com/user/forum-go/threads"
	"github.com/user/forum-go/topics"
	"github.com/user/forum-go/users"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "forum-go",
		Usage: "forum REST API",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the HTTP server",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "migrate", Usage: "apply pending migrations before serving"},
				},
				Action: func(c *cli.Context) error {
					return withEnv(func(cfg *config.AppConfig, log *zap.Logger) error {
						return serve(c.Context, cfg, log, c.Bool("migrate"))
					})
				},
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back database migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: func(c *cli.Context) error {
							return withEnv(func(cfg *config.AppConfig, log *zap.Logger) error {
								return migrate(cfg, log, db.Up)
							})
						},
					},
					{
						Name:  "down",
						Usage: "roll back all migrations",
						Action: func(c *cli.Context) error {
							return withEnv(func(cfg *config.AppConfig, log *zap.Logger) error {
								return migrate(cfg, log, db.Down)
							})
						},
					},
				},
			},
			{
				Name:  "seed",
				Usage: "create the demo user, topic, thread and contribution",
				Action: func(c *cli.Context) error {
					return withEnv(func(cfg *config.AppConfig, log *zap.Logger) error {
						return runSeed(c.Context, cfg, log)
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withEnv loads the configuration and logger and hands them to fn.
func withEnv(fn func(*config.AppConfig, *zap.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	return fn(cfg, log)
}

func migrate(cfg *config.AppConfig, log *zap.Logger, dir db.Direction) error {
	if cfg.Storage.Driver != config.StoragePostgres {
		return fmt.Errorf("migrations need STORAGE_DRIVER=%s, got %s", config.StoragePostgres, cfg.Storage.Driver)
	}
	return db.RunMigrations(cfg.DB, cfg.Storage.MigrationsPath, dir, log)
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn("using in-memory storage; data is lost on exit")
		return memory.New(), nil
	case config.StoragePostgres:
		pool, err := db.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return postgres.New(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func runSeed(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) error {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	seeder := seed.New(store,
		auth.NewAuthService(store, cfg.Auth, log),
		topics.NewTopicService(store, log),
		threads.NewThreadService(store, nil, log),
		contributions.NewContributionService(store, nil, log),
		log,
	)
	res, err := seeder.Run(ctx)
	if err != nil {
		return err
	}
	log.Info("seed finished", zap.Bool("created", res.Created), zap.String("login", seed.DemoEmail))
	return nil
}

func serve(ctx context.Context, cfg *config.AppConfig, log *zap.Logger, runMigrations bool) error {
	if runMigrations {
		if err := migrate(cfg, log, db.Up); err != nil {
			return err
		}
	}

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	views := background.NewViewCounter(store, cfg.Server.ViewFlushInterval, log)
	views.Start()

	broadcaster := events.NewBroadcaster(log)
	authService := auth.NewAuthService(store, cfg.Auth, log)
	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimitRPS, cfg.Auth.RateLimitBurst)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go limiter.SweepEvery(sweepCtx, time.Minute)

	router := server.NewRouter(server.Deps{
		Logger:         log,
		Storage:        store,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth:           authService,
		SecureCookie:   cfg.Auth.SecureCookie,
		AuthLimiter:    limiter,
		Users:          users.NewUserService(store),
		Topics:         topics.NewTopicService(store, log),
		Threads:        threads.NewThreadService(store, views, log),
		ThreadEvents:   broadcaster,
		Contributions:  contributions.NewContributionService(store, broadcaster, log),
	})

	// Cancelled on Shutdown so open event streams return.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// No WriteTimeout: thread event streams stay open.
		IdleTimeout: 60 * time.Second,
	}

	srv.RegisterOnShutdown(cancelBase)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", addr), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serverErr:
		if ok {
			views.Stop()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
	// After Shutdown no handler can record more views.
	views.Stop()
	log.Info("server stopped gracefully")
	return nil
}
