package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docfind/docfind/internal/events"
	"github.com/docfind/docfind/internal/index"
	"github.com/docfind/docfind/internal/search"
	"github.com/docfind/docfind/internal/search/cache"
	"github.com/docfind/docfind/internal/server"
	"github.com/docfind/docfind/internal/service"
	"github.com/docfind/docfind/internal/store"
	"github.com/docfind/docfind/pkg/config"
	"github.com/docfind/docfind/pkg/health"
	"github.com/docfind/docfind/pkg/kafka"
	"github.com/docfind/docfind/pkg/logger"
	"github.com/docfind/docfind/pkg/metrics"
	"github.com/docfind/docfind/pkg/middleware"
	"github.com/docfind/docfind/pkg/postgres"
	pkgredis "github.com/docfind/docfind/pkg/redis"
	"github.com/docfind/docfind/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting docfind", "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pg *postgres.Client
	err = resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{MaxAttempts: 5}, func() error {
		var err error
		pg, err = postgres.New(cfg.Postgres)
		return err
	})
	if err != nil {
		slog.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	docStore := store.NewResilientStore(
		store.NewPostgresStore(pg),
		resilience.CircuitBreakerConfig{},
		cfg.Search.StoreFetchTimeout,
	)
	ix := index.New(index.NewPostgresPostingStore(pg))
	processor := search.NewProcessor(ix, docStore, cfg.Search)

	var opts []service.Option
	m := metrics.New()
	processor.OnExpansion(func(terms int) {
		m.FuzzyExpansionSize.Observe(float64(terms))
	})
	opts = append(opts, service.WithMetrics(m))

	var queryCache *cache.QueryCache
	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, search caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis)
		opts = append(opts, service.WithCache(queryCache))
		slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexEvents)
	defer producer.Close()
	opts = append(opts, service.WithPublisher(events.NewPublisher(producer)))

	svc := service.New(ix, processor, docStore, opts...)

	// Other replicas invalidate their caches off the same topic.
	if queryCache != nil {
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexEvents, events.InvalidationHandler(queryCache.Invalidate))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("index event consumer stopped", "error", err)
			}
		}()
	}

	rebuildCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	count, err := svc.RebuildIndex(rebuildCtx)
	cancel()
	if err != nil {
		slog.Error("startup index rebuild failed", "error", err)
		os.Exit(1)
	}
	slog.Info("index ready", "documents", count)

	checker := health.NewChecker()
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := pg.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := server.NewHandler(svc, cfg.Search.DefaultLimit, cfg.Search.MaxLimit)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("POST /api/v1/index/rebuild", h.Rebuild)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())
	if cfg.Metrics.Enabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("docfind listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("docfind stopped")
}
