package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/lib/pq"

	"github.com/slh-community/slh-bot/internal/apperrors"
	"github.com/slh-community/slh-bot/internal/command"
	"github.com/slh-community/slh-bot/internal/command/handlers"
	"github.com/slh-community/slh-bot/internal/database"
	"github.com/slh-community/slh-bot/internal/health"
	"github.com/slh-community/slh-bot/internal/ledger"
	"github.com/slh-community/slh-bot/internal/lifecycle"
	"github.com/slh-community/slh-bot/internal/middleware"
	"github.com/slh-community/slh-bot/internal/orders"
	"github.com/slh-community/slh-bot/internal/ratelimit"
	"github.com/slh-community/slh-bot/internal/server"
	"github.com/slh-community/slh-bot/internal/store"
	"github.com/slh-community/slh-bot/internal/store/memory"
	"github.com/slh-community/slh-bot/internal/store/postgres"
	"github.com/slh-community/slh-bot/internal/user"
	"github.com/slh-community/slh-bot/internal/usercache"
	"github.com/slh-community/slh-bot/pkg/config"
	"github.com/slh-community/slh-bot/pkg/graceful"
	"github.com/slh-community/slh-bot/pkg/logger"
	rediswrap "github.com/slh-community/slh-bot/pkg/redis"
)

const cleanerInterval = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
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

	log, flushSentry, err := logger.New(cfg.Logger, cfg.Sentry, cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer flushSentry()
	slog.SetDefault(log)

	log.Info("starting slh community bot",
		slog.String("env", cfg.AppEnv),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("addr", cfg.Server.Addr),
	)

	shutdown := lifecycle.NewShutdown(log)

	st, checker, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	shutdown.Register("store", func(context.Context) error { return st.Close() })

	cache, limiter, err := buildRedis(ctx, cfg, log, checker, shutdown)
	if err != nil {
		return err
	}

	faucetAmount, err := decimal.NewFromString(cfg.Ledger.FaucetAmount)
	if err != nil {
		return fmt.Errorf("parse faucet amount %q: %w", cfg.Ledger.FaucetAmount, err)
	}

	users := user.NewService(st, cache, log)
	ledgerSvc := ledger.NewService(st, ledger.Config{
		FaucetToken:  cfg.Ledger.FaucetToken,
		FaucetAmount: faucetAmount,
		HistoryLimit: cfg.Ledger.HistoryLimit,
	}, log)
	ordersSvc := orders.NewService(st, log)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)

	rules := ratelimit.NewRules(cfg.RateLimit)
	config.Watch(v, log, func(updated *config.Config) {
		rules.Update(updated.RateLimit)
	})

	router := command.NewRouter(log)
	router.Use(middleware.Logging(log))
	router.Use(middleware.Metrics)
	router.Use(middleware.NewRateLimit(limiter, rules, log).Handle)
	handlers.RegisterAll(router, handlers.Deps{
		Users:  users,
		Ledger: ledgerSvc,
		Orders: ordersSvc,
		Errors: errHandler,
		Log:    log,
	})

	if cfg.Ledger.ReconcileInterval > 0 {
		reconciler := ledger.NewReconciler(ledgerSvc, st, log, cfg.Ledger.ReconcileInterval)
		go reconciler.Run(ctx)
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.NewHandler(router, checker, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	srv := graceful.NewServer(log, httpServer, cfg.Server.ShutdownTimeout)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe(ctx) }()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		<-serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("slh community bot stopped")
	return nil
}

// buildStore opens the configured ledger store backend and registers
// its health check.
func buildStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, *health.Checker, error) {
	checker := health.NewChecker(log)

	if cfg.Storage.Driver == "memory" {
		log.Warn("using in-memory store, all data is lost on restart")
		return memory.New(), checker, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	err = apperrors.WithRetry(ctx, func() error {
		if pingErr := db.PingContext(ctx); pingErr != nil {
			return apperrors.NewDatabaseError(pingErr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	migrator := database.NewMigrator(db, log)
	if err := migrator.ApplyDir(ctx, cfg.Database.MigrationsDir); err != nil {
		return nil, nil, fmt.Errorf("apply migrations: %w", err)
	}

	checker.AddCheck("database", health.NewDBChecker(db))

	return postgres.New(db, log), checker, nil
}

// buildRedis wires the user cache and rate limiter. Without Redis the
// cache is a no-op and limiting falls back to the in-memory backend.
func buildRedis(ctx context.Context, cfg *config.Config, log *slog.Logger, checker *health.Checker, shutdown *lifecycle.Shutdown) (*usercache.Cache, ratelimit.Limiter, error) {
	if !cfg.Redis.Enabled {
		mem := ratelimit.NewMemoryLimiter(log)
		go sweepMemoryLimiter(ctx, mem, 2*cfg.RateLimit.FaucetCooldown)
		return usercache.NewCache(nil), mem, nil
	}

	rdb, err := rediswrap.New(ctx, rediswrap.Config{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		PoolTimeout:  cfg.Redis.PoolTimeout,
		IdleTimeout:  cfg.Redis.IdleTimeout,
		MaxRetries:   cfg.Redis.MaxRetries,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	shutdown.Register("redis", func(context.Context) error { return rdb.Close() })

	checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))

	limiter := ratelimit.NewAdaptiveLimiter(
		ratelimit.NewRedisLimiter(rdb.Client, log),
		ratelimit.NewMemoryLimiter(log),
		log,
	)

	cleaner := ratelimit.NewCleaner(rdb.Client, log, cleanerInterval, 2*cfg.RateLimit.FaucetCooldown)
	go cleaner.Run(ctx)

	return usercache.NewCache(rediswrap.NewMetricsClient(rdb)), limiter, nil
}

// sweepMemoryLimiter stands in for the Redis cleaner when limiting runs
// purely in process.
func sweepMemoryLimiter(ctx context.Context, limiter *ratelimit.MemoryLimiter, staleAfter time.Duration) {
	ticker := time.NewTicker(cleanerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Cleanup(staleAfter)
		}
	}
}
