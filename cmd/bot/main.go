package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mgsg-dev/mgsg-bot/internal/bot"
	"github.com/mgsg-dev/mgsg-bot/internal/database"
	"github.com/mgsg-dev/mgsg-bot/internal/dedupe"
	apperrors "github.com/mgsg-dev/mgsg-bot/internal/errors"
	"github.com/mgsg-dev/mgsg-bot/internal/gateway"
	"github.com/mgsg-dev/mgsg-bot/internal/health"
	"github.com/mgsg-dev/mgsg-bot/internal/jobs"
	"github.com/mgsg-dev/mgsg-bot/internal/lifecycle"
	"github.com/mgsg-dev/mgsg-bot/internal/registry"
	"github.com/mgsg-dev/mgsg-bot/internal/throttle"
	"github.com/mgsg-dev/mgsg-bot/pkg/config"
	"github.com/mgsg-dev/mgsg-bot/pkg/graceful"
	"github.com/mgsg-dev/mgsg-bot/pkg/logger"
	"github.com/mgsg-dev/mgsg-bot/pkg/metrics"
	redisclient "github.com/mgsg-dev/mgsg-bot/pkg/redis"
)

const rosterPollInterval = time.Minute

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	config.Watch(v, log)

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			log.Error("sentry init failed", slog.Any("error", err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	shutdown := lifecycle.NewShutdown(log)

	var db *sql.DB
	if cfg.Registry.Backend == "postgres" {
		db, err = openPostgres(ctx, cfg, log)
		if err != nil {
			return err
		}
		shutdown.Register("postgres", func(context.Context) error { return db.Close() })
	}

	var rdb *redisclient.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redisclient.New(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		shutdown.Register("redis", func(context.Context) error { return rdb.Close() })
	}

	store, err := newStore(cfg, db, log)
	if err != nil {
		return fmt.Errorf("open registry: %w", err)
	}
	shutdown.Register("registry", func(context.Context) error { return store.Close() })

	limiter := newLimiter(ctx, cfg, rdb, log)

	var deduper dedupe.Deduper = dedupe.NewMemoryDeduper()
	if rdb != nil {
		deduper = dedupe.NewRedisDeduper(rdb.Client)
	}

	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	retry := apperrors.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.OpenAI.MaxAttempts
	retry.InitialBackoff = cfg.OpenAI.InitialBackoff

	gw := gateway.New(gateway.NewOpenAIClient(cfg.OpenAI), gateway.Options{
		Model:          cfg.OpenAI.Model,
		MaxConcurrent:  cfg.OpenAI.MaxConcurrent,
		RequestTimeout: cfg.OpenAI.RequestTimeout,
		RequestDelay:   cfg.OpenAI.RequestDelay,
		Retry:          retry,
	}, errHandler, log)

	runner := jobs.NewRunner(context.Background(), log)

	b, err := bot.New(cfg, bot.Deps{
		Store:      store,
		Limiter:    limiter,
		Deduper:    deduper,
		Completer:  gw,
		Runner:     runner,
		ErrHandler: errHandler,
	}, log)
	if err != nil {
		return err
	}

	checker := health.NewChecker(log)
	checker.Register("telegram", health.Telegram(b.Telebot()))
	if db != nil {
		checker.Register("postgres", health.Postgres(db))
	}
	if rdb != nil {
		checker.Register("redis", health.Redis(rdb.Client))
	}

	go serveOps(ctx, cfg, checker, log)
	go metrics.NewRosterCollector(store, rosterPollInterval).Run(ctx)

	// registered last so they run first: stop the poller, then drain tasks
	shutdown.Register("tasks", func(ctx context.Context) error { return runner.Wait(ctx) })
	shutdown.Register("bot", func(context.Context) error { b.Stop(); return nil })

	go b.Start()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	shutdown.Execute(shutdownCtx)
	return nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if dir := cfg.Database.MigrationsDir; dir != "" {
		if err := database.NewMigrator(db, log).ApplyDir(ctx, dir); err != nil {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	}
	return db, nil
}

func newStore(cfg *config.Config, db *sql.DB, log *slog.Logger) (registry.Store, error) {
	switch cfg.Registry.Backend {
	case "postgres":
		return registry.NewPostgresStore(db, log), nil
	case "memory":
		return registry.NewMemoryStore(), nil
	default:
		return registry.NewFileStore(cfg.Registry.FilePath, log)
	}
}

func newLimiter(ctx context.Context, cfg *config.Config, rdb *redisclient.Client, log *slog.Logger) throttle.Limiter {
	if rdb != nil {
		return throttle.NewRedisLimiter(rdb.Client, cfg.Throttle.Cooldown, log)
	}

	mem := throttle.NewMemoryLimiter(cfg.Throttle.Cooldown, log)
	maxAge := time.Duration(cfg.Throttle.MaxIdleFactor) * cfg.Throttle.Cooldown
	go throttle.NewCleaner(mem, cfg.Throttle.SweepInterval, maxAge, log).Run(ctx)
	return mem
}

func serveOps(ctx context.Context, cfg *config.Config, checker *health.Checker, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		results, healthy := checker.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(results)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           logger.Middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := graceful.NewServer(log, srv, cfg.Server.ShutdownTimeout).ListenAndServe(ctx); err != nil {
		log.Error("ops server failed", slog.Any("error", err))
	}
}
