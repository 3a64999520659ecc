package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"myimpact/internal/audit"
	"myimpact/internal/config"
	"myimpact/internal/logger"
	"myimpact/internal/queue"
	"myimpact/internal/store"
)

// Worker consumes audit events from the redis queue and writes them to the
// audit archive.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logs, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: !cfg.Production()})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logs.Sync() }()

	if cfg.QueueBackend != "redis" {
		logs.Fatalw("worker needs QUEUE_BACKEND=redis; the memory queue is drained inside the API process",
			"queue", cfg.QueueBackend)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logs.Fatalw("db connect failed", "driver", cfg.DatabaseDriver, "error", err)
	}
	defer db.Close()

	archive := audit.NewArchive(db.Client)
	if err := archive.EnsureSchema(ctx); err != nil {
		logs.Fatalw("archive schema", "error", err)
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	if !redisClient.Healthy(ctx) {
		logs.Warnw("redis not reachable yet, consumer will keep retrying", "addr", cfg.RedisAddr)
	}

	q := queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	archiver := audit.NewArchiver(q, archive, logs.Named("archiver"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return archiver.Run(gctx) })
	if err := g.Wait(); err != nil {
		logs.Errorw("worker stopped with error", "error", err)
		return
	}
	logs.Infow("worker stopped")
}
