package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/TemirB/orders-api/internal/application/handler"
	"github.com/TemirB/orders-api/internal/application/service"
	"github.com/TemirB/orders-api/internal/cache"
	"github.com/TemirB/orders-api/internal/config"
	"github.com/TemirB/orders-api/internal/database"
	"github.com/TemirB/orders-api/internal/domain"
	"github.com/TemirB/orders-api/internal/httpapi"
	"github.com/TemirB/orders-api/internal/kafka"
	"github.com/TemirB/orders-api/internal/observability"
	"github.com/TemirB/orders-api/internal/pkg/breaker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type resultCache interface {
	domain.Cache
	httpapi.Pinger
	Close() error
}

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Connect(ctx, database.Config{
		DSN:        cfg.DSN(),
		MaxConns:   cfg.Pg.MaxConns,
		MinConns:   cfg.Pg.MinConns,
		TraceLevel: cfg.Pg.TraceLevel,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()
	repo := database.NewOrderRepository(store, cfg.Pg.OrdersTable)

	resCache, err := newCache(cfg.Cache)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer func() { _ = resCache.Close() }()
	if err := resCache.Ping(ctx); err != nil {
		// Reads fall through to the store while the cache is down.
		logger.Warn("cache is not reachable at start-up", zap.String("backend", cfg.Cache.Backend), zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewPrometheus(reg)

	svc := service.NewService(resCache, repo, logger.Named("service"), metrics, service.Options{
		TTL:               cfg.Cache.TTL,
		MaxPageSize:       cfg.MaxPageSize,
		InvalidateOnWrite: cfg.Cache.InvalidateOnWrite,
	})

	var wg sync.WaitGroup
	if cfg.KafkaEnabled() {
		if err := startConsumer(ctx, &wg, cfg, svc, metrics, logger); err != nil {
			return err
		}
	} else {
		logger.Info("KAFKA_BROKERS is empty, ingest consumer disabled")
	}

	server := httpapi.New(svc, logger.Named("http"), metrics,
		httpapi.WithHealthCheck("postgres", store),
		httpapi.WithHealthCheck("cache", resCache),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	)

	err = server.ListenAndServe(ctx, httpapi.Config{
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	})
	stop()
	wg.Wait()
	logger.Info("Service stopped")
	return err
}

func newCache(cfg config.Cache) (resultCache, error) {
	switch cfg.Backend {
	case config.CacheMemory:
		return cache.NewMemory(cfg.Cap, cfg.TTL)
	default:
		return cache.NewRedis(cache.RedisConfig{
			Addr:       config.Config{Cache: cfg}.RedisAddr(),
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			DefaultTTL: cfg.TTL,
		}), nil
	}
}

func startConsumer(ctx context.Context, wg *sync.WaitGroup, cfg config.Config, svc *service.Service, metrics observability.Metrics, logger *zap.Logger) error {
	topicCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := kafka.EnsureTopic(topicCtx, cfg.Kafka, kafka.DefaultTopicSpec, logger.Named("kafka")); err != nil {
		return fmt.Errorf("ensure topic: %w", err)
	}

	reader := kafka.NewReader(cfg.Kafka)
	h := handler.NewHandler(svc, breaker.New(cfg.Breaker), cfg.Retry, logger.Named("handler"), metrics)
	consumer := kafka.NewConsumer(h, reader, cfg.Kafka.Workers, logger.Named("kafka"))

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if err := reader.Close(); err != nil {
				logger.Warn("kafka reader close", zap.Error(err))
			}
		}()
		consumer.Start(ctx)
	}()
	return nil
}

func newLogger(cfg config.Log) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if cfg.Env == "production" {
		zcfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zcfg.Level = level
	return zcfg.Build()
}
