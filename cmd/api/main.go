package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"myimpact/internal/audit"
	"myimpact/internal/auth"
	"myimpact/internal/config"
	"myimpact/internal/export"
	"myimpact/internal/handler"
	"myimpact/internal/httpmiddleware"
	"myimpact/internal/kpi"
	"myimpact/internal/logger"
	"myimpact/internal/model"
	"myimpact/internal/queue"
	"myimpact/internal/settings"
	"myimpact/internal/store"
	"myimpact/internal/verification"
)

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

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, logs); err != nil {
		logs.Fatalw("http server failed", "error", err)
	}
}

func runHTTP(cfg config.App, logs *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.NewMemory(store.DefaultSettings)
	if cfg.SeedDemoData {
		if err := store.Seed(st, time.Now()); err != nil {
			return err
		}
		logs.Infow("demo data loaded")
	}

	// The archive is optional: without it the API still serves, it just
	// keeps no durable copy of the audit log.
	db, err := store.NewDB(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logs.Warnw("audit archive unavailable", "driver", cfg.DatabaseDriver, "error", err)
	}
	defer func() { _ = db.Close() }()

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	g, gctx := errgroup.WithContext(ctx)

	var sink audit.Sink
	switch {
	case cfg.QueueBackend == "redis":
		sink = audit.NewQueueSink(queue.NewRedisQueue(redisClient.Client, queue.DefaultKey))
	case db != nil:
		archive := audit.NewArchive(db.Client)
		if err := archive.EnsureSchema(ctx); err != nil {
			return err
		}
		q := queue.NewInMemory(256)
		sink = audit.NewQueueSink(q)
		archiver := audit.NewArchiver(q, archive, logs.Named("archiver"))
		g.Go(func() error { return archiver.Run(gctx) })
	}

	engine := kpi.NewEngine(st, kpi.Config{
		CurrentTerm:             cfg.CurrentTerm,
		RequiredHours:           cfg.RequiredHours,
		OnTrackThreshold:        cfg.OnTrackThreshold,
		NeedsAttentionThreshold: cfg.NeedsAttentionThreshold,
	})
	deps := handler.Deps{
		Engine:       engine,
		Verification: verification.NewService(st, logs.Named("verification"), verification.WithSink(sink)),
		Audit:        audit.NewLog(st),
		Settings:     settings.NewService(st, sink, logs.Named("settings")),
		Export:       export.NewService(st, sink, logs.Named("export")),
		CurrentTerm:  cfg.CurrentTerm,
		Log:          logs.Named("http"),
	}

	var protect []gin.HandlerFunc
	if cfg.AuthMode == "jwt" {
		deps.Actors = auth.TokenProvider{}
		protect = append(protect, auth.BearerAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
		if !cfg.Production() {
			deps.IssueToken = func(a model.Actor) (auth.Token, error) {
				return auth.Issue(a, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL)
			}
		}
	} else {
		deps.Actors = auth.NewStaticProvider(auth.DevAdmin)
	}
	h := handler.New(deps)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(logs.Named("http")))
	r.Use(httpmiddleware.CORS(cfg.CORSOrigins))
	r.Use(httpmiddleware.SecureHeaders())
	r.Use(httpmiddleware.NewRateLimiter(cfg.RateLimitPerMin).Middleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Healthy(c.Request.Context())
		status := http.StatusOK
		if cfg.QueueBackend == "redis" && !redisHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	api := r.Group("/api")
	h.RegisterPublic(api)
	h.Register(api.Group("", protect...))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		logs.Infow("starting server", "port", cfg.HTTPPort, "auth", cfg.AuthMode, "queue", cfg.QueueBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logs.Infow("shutting down server")
		// Give outstanding requests 10 seconds to complete.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logs.Warnw("server forced shutdown", "error", err)
		}
		return nil
	})

	err = g.Wait()
	logs.Infow("server exited")
	return err
}
