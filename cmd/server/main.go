package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/cancer-registry-edits/internal/api"
	"github.com/cancer-registry-edits/internal/config"
	"github.com/cancer-registry-edits/internal/domain"
	"github.com/cancer-registry-edits/internal/health"
	"github.com/cancer-registry-edits/internal/metrics"
	"github.com/cancer-registry-edits/internal/progress"
	"github.com/cancer-registry-edits/internal/service"
	"github.com/cancer-registry-edits/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "registry-edits server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configManager, err := config.NewManager()
	if err != nil {
		return err
	}
	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg := configManager.GetConfig()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, api.Version, logger)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.WithError(err).Warn("Failed to flush spans at shutdown")
		}
	}()

	registry, err := service.LoadRegistry(ctx, cfg.Codes, logger)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	hub := progress.NewHub(logger)
	notifiers := progress.Multi{hub, progress.NewLogNotifier(logger)}

	checker := health.NewChecker(api.Version, cfg.Server.RequestTimeout, logger)
	checker.RegisterCheck(&health.DictionaryCheck{Registry: registry})

	if remote, client := redisNotifier(ctx, cfg.Progress, logger, m); remote != nil {
		defer client.Close()
		checker.RegisterCheck(&health.RedisCheck{Client: client, MaxLatency: cfg.Progress.PublishTimeout})
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := remote.Close(closeCtx); err != nil {
				logger.WithError(err).Warn("Progress events still queued at shutdown were dropped")
			}
		}()
		notifiers = append(notifiers, remote)
	}

	pipeline, err := service.NewPipeline(registry, service.PipelineOptions{
		Workers:  cfg.Pipeline.Workers,
		MemoSize: cfg.Correction.MemoSize,
		Notifier: notifiers,
		Metrics:  m,
	}, logger)
	if err != nil {
		return err
	}

	server := api.NewServer(configManager, api.Dependencies{
		Registry: registry,
		Pipeline: pipeline,
		Hub:      hub,
		Gatherer: prometheus.DefaultGatherer,
		Health:   checker,
	}, logger)

	logger.WithFields(logrus.Fields{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
	}).Info("Starting cancer registry edits server")

	if err := server.Start(ctx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// redisNotifier publishes progress to Redis behind a circuit breaker and a
// bounded queue. It returns nil when Redis is not configured or unreachable.
func redisNotifier(ctx context.Context, cfg domain.ProgressConfig, logger *logrus.Logger, m *metrics.Metrics) (*progress.AsyncNotifier, *redis.Client) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	client, err := progress.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, progress will only be streamed over WebSocket")
		return nil, nil
	}

	publisher := progress.NewRedisNotifier(client, cfg.ChannelPrefix)
	guarded := progress.NewBreakerNotifier("redis", publisher, cfg.Breaker, logger)
	logger.WithField("channel_prefix", cfg.ChannelPrefix).Info("Publishing progress to Redis")
	return progress.NewAsyncNotifier(guarded, cfg.BufferSize, cfg.PublishTimeout, logger, m), client
}
