package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/catalog"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/config"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/database"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/handler/health"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/migrations"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/placequiz"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/quiz"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/server"
	"github.com/Chiroru76/hokkaido-place-quiz/internal/sessionstore"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.RunWithLogger(db, logger); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Places ---
	places := catalog.New(db)
	if cfg.SeedCSV != "" {
		n, err := places.ImportFile(ctx, cfg.SeedCSV, cfg.SeedCSVEncoding)
		if err != nil {
			return fmt.Errorf("importing places: %w", err)
		}
		logger.Info("places imported", "path", cfg.SeedCSV, "count", n)
	}
	if err := places.SeedDemo(ctx, logger); err != nil {
		return fmt.Errorf("seeding places: %w", err)
	}

	checks := map[string]health.Checker{"sqlite": health.DB(db)}

	// --- Sessions ---
	var sessions placequiz.SessionStore
	var purge func(context.Context) (int64, error)
	switch cfg.SessionBackend {
	case config.BackendRedis:
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")
		checks["redis"] = health.Redis(rdb)
		sessions = sessionstore.NewRedisStore(rdb, cfg.SessionTTL)
	case config.BackendSQLite:
		store := sessionstore.NewSQLiteStore(db, cfg.SessionTTL)
		sessions, purge = store, store.Purge
	case config.BackendMemory:
		sessions = sessionstore.NewMemoryStore(cfg.SessionTTL)
	}
	logger.Info("session store ready", "backend", cfg.SessionBackend, "ttl", cfg.SessionTTL.String())

	// --- HTTP Server ---
	broker := server.NewBroker()
	svc := quiz.NewService(places, sessions, logger, quiz.WithNotifier(broker))

	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Quiz:        svc,
		Broker:      broker,
		Health:      health.NewHandler(logger, checks).Routes(),
		CORSOrigins: cfg.CORSOrigins,
		SPADir:      cfg.SPADir,
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	if purge != nil {
		g.Go(func() error {
			return runPurge(gctx, logger, cfg.SessionPurgeInterval, purge)
		})
	}

	return g.Wait()
}

// runPurge deletes expired sqlite sessions on a schedule until ctx ends.
func runPurge(ctx context.Context, logger *slog.Logger, every time.Duration, purge func(context.Context) (int64, error)) error {
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(every).Do(func() {
		n, err := purge(ctx)
		if err != nil {
			logger.Error("purging sessions", "error", err)
			return
		}
		if n > 0 {
			logger.Info("expired sessions purged", "count", n)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling purge: %w", err)
	}

	s.StartAsync()
	<-ctx.Done()
	s.Stop()
	return nil
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}
