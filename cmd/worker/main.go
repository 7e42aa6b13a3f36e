package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/marcelsud/webhook-exchange/backoff"
	"github.com/marcelsud/webhook-exchange/config"
	"github.com/marcelsud/webhook-exchange/delivery"
	deliverypg "github.com/marcelsud/webhook-exchange/delivery/postgres"
	"github.com/marcelsud/webhook-exchange/destinations"
	"github.com/marcelsud/webhook-exchange/dlq"
	dlqpg "github.com/marcelsud/webhook-exchange/dlq/postgres"
	"github.com/marcelsud/webhook-exchange/intake"
	intakepg "github.com/marcelsud/webhook-exchange/intake/postgres"
	"github.com/marcelsud/webhook-exchange/intake/redisq"
	"github.com/marcelsud/webhook-exchange/metrics"
	"github.com/marcelsud/webhook-exchange/relay"
	"github.com/marcelsud/webhook-exchange/stats"
	statspg "github.com/marcelsud/webhook-exchange/stats/postgres"
)

const TIMEOUT = 30 * time.Second

/* The worker binary owns everything asynchronous: consuming queued events,
 * fanning them out to destinations, remediating the dead letter queue,
 * rolling up statistics and exposing metrics
 */

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "worker").Logger()

	cfg, err := config.GetConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading configuration")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	db, err := openDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to postgres")
	}
	defer db.Close()

	eventRepo := intakepg.NewRepositoryWithDB(db)
	deliveryRepo := deliverypg.NewRepositoryWithDB(db)
	dlqRepo := dlqpg.NewRepositoryWithDB(db)
	statsRepo := statspg.NewRepositoryWithDB(db)

	for _, create := range []func(context.Context) error{
		eventRepo.CreateTable, deliveryRepo.CreateTable, dlqRepo.CreateTable, statsRepo.CreateTable,
	} {
		if err := create(ctx); err != nil {
			logger.Fatal().Err(err).Msg("creating tables")
		}
	}

	queue, err := redisq.NewQueue(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "worker")
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to redis")
	}
	defer queue.Close()

	destLoader := destinations.NewLoader()
	if err := destLoader.Load(cfg.DestinationsFile); err != nil {
		// Events still complete without configured destinations, they just
		// fan out to nothing
		logger.Warn().Err(err).Msg("destinations not loaded")
	}

	exporter, err := metrics.NewOTelExporter(metrics.NewStoreCollector(queue, eventRepo, dlqRepo))
	if err != nil {
		logger.Fatal().Err(err).Msg("building metrics exporter")
	}

	redriver := dlq.NewEventRedriver(eventRepo, queue)

	dlqService, err := dlq.NewService(dlqRepo, redriver, dlq.Config{
		MaxRetries: cfg.DLQMaxRetries,
		RetryDelay: cfg.GetDLQRetryDelay(),
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building dead letter service")
	}

	policy, err := buildBackoffPolicy(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("building backoff policy")
	}

	deliveryService, err := buildDeliveryService(cfg, deliveryRepo, dlqService, exporter, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building delivery service")
	}

	worker, err := intake.NewWorker(eventRepo, queue,
		relay.NewProcessor(deliveryService, destLoader, logger),
		policy, dlqService, intake.WorkerConfig{
			SweepInterval: cfg.GetIntakeSweepInterval(),
			SweepBatch:    cfg.IntakeSweepBatch,
			ClaimLease:    cfg.GetIntakeClaimLease(),
			Retention:     cfg.GetIntakeRetention(),
		}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building worker")
	}

	dlqPolicy, err := backoff.New(backoff.Config{
		InitialDelay: cfg.GetDLQRetryDelay(),
		MaxDelay:     cfg.GetDLQMaxDelay(),
		Factor:       cfg.BackoffFactor,
		Jitter:       cfg.BackoffJitter,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))
	if err != nil {
		logger.Fatal().Err(err).Msg("building remediation backoff policy")
	}

	scheduler, err := dlq.NewScheduler(dlqRepo, redriver, dlqPolicy, dlq.SchedulerConfig{
		Interval:  cfg.GetDLQSweepInterval(),
		Batch:     cfg.DLQBatch,
		ClaimHold: cfg.GetDLQClaimHold(),
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building remediation scheduler")
	}

	statsService, err := stats.NewService(statsRepo, stats.Config{
		Period: cfg.GetStatsPeriod(),
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building stats service")
	}

	r := chi.NewRouter()
	r.Handle("/metrics", exporter.ServeHTTP())
	metricsSrv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.MetricsPort,
		Handler:      r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return worker.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	g.Go(func() error { return statsService.Run(gctx) })
	g.Go(func() error {
		err := metricsSrv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		ctxTimeout, cancel := context.WithTimeout(context.Background(), TIMEOUT)
		defer cancel()
		return metricsSrv.Shutdown(ctxTimeout)
	})

	logger.Info().Str("metrics_port", cfg.MetricsPort).Msg("worker running")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker stopped")
	}

	if err := exporter.Shutdown(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("shutting down metrics exporter")
	}
	logger.Info().Msg("worker stopped cleanly")
}

func openDB(connectionString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

func buildBackoffPolicy(cfg *config.Config) (*backoff.Policy, error) {
	return backoff.New(backoff.Config{
		InitialDelay: cfg.GetBackoffInitialDelay(),
		MaxDelay:     cfg.GetBackoffMaxDelay(),
		Factor:       cfg.BackoffFactor,
		Jitter:       cfg.BackoffJitter,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))
}

func buildDeliveryService(cfg *config.Config, recorder delivery.Recorder, deadLetter delivery.DeadLetter, notifier delivery.Notifier, logger zerolog.Logger) (*delivery.Service, error) {
	executor, err := delivery.NewExecutor(cfg.GetDeliveryTimeout(), cfg.WebhookSecret)
	if err != nil {
		return nil, err
	}

	policy, err := buildBackoffPolicy(cfg)
	if err != nil {
		return nil, err
	}

	success, err := cfg.ParseSuccessStatuses()
	if err != nil {
		return nil, err
	}
	retryable, err := cfg.ParseRetryableStatuses()
	if err != nil {
		return nil, err
	}

	return delivery.NewService(executor, policy, delivery.NewClassifier(success, retryable),
		recorder, deadLetter, notifier, delivery.Config{
			MaxAttempts:     cfg.DeliveryMaxAttempts,
			HonorRetryAfter: cfg.HonorRetryAfter,
		}, logger)
}
