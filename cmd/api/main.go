package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

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
	httpchi "github.com/marcelsud/webhook-exchange/internal/http/chi"
	"github.com/marcelsud/webhook-exchange/stats"
	statspg "github.com/marcelsud/webhook-exchange/stats/postgres"
)

const TIMEOUT = 30 * time.Second

/* The API binary owns the synchronous surface: intake, delivery requests,
 * dead letter inspection and statistics. Event processing and remediation
 * run in the worker binary
 */

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api").Logger()

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

	queue, err := redisq.NewQueue(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, "api")
	if err != nil {
		logger.Fatal().Err(err).Msg("connecting to redis")
	}
	defer queue.Close()

	destLoader := destinations.NewLoader()
	if err := destLoader.Load(cfg.DestinationsFile); err != nil {
		// The API can run intake-only without configured destinations
		logger.Warn().Err(err).Msg("destinations not loaded, outbound delivery disabled")
	}

	intakeService, err := intake.NewService(eventRepo, queue, intake.Config{
		Secret:                 cfg.WebhookSecret,
		StoreInvalidSignatures: cfg.StoreInvalidSignatures,
		MaxAttempts:            cfg.IntakeMaxAttempts,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building intake service")
	}

	dlqService, err := dlq.NewService(dlqRepo, dlq.NewEventRedriver(eventRepo, queue), dlq.Config{
		MaxRetries: cfg.DLQMaxRetries,
		RetryDelay: cfg.GetDLQRetryDelay(),
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building dead letter service")
	}

	deliveryService, err := buildDeliveryService(cfg, deliveryRepo, dlqService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building delivery service")
	}

	statsService, err := stats.NewService(statsRepo, stats.Config{
		Period: cfg.GetStatsPeriod(),
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("building stats service")
	}

	r := httpchi.Handlers(ctx, httpchi.Services{
		Intake:       intakeService,
		Events:       eventRepo,
		Delivery:     deliveryService,
		Deliveries:   deliveryRepo,
		Destinations: destLoader,
		DLQ:          dlqService,
		Stats:        statsService,
	})

	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info().Str("port", cfg.Port).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("server failed")
	}
	if err := <-errShutdown; err != nil {
		logger.Fatal().Err(err).Msg("shutdown failed")
	}
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

func buildDeliveryService(cfg *config.Config, recorder delivery.Recorder, deadLetter delivery.DeadLetter, logger zerolog.Logger) (*delivery.Service, error) {
	executor, err := delivery.NewExecutor(cfg.GetDeliveryTimeout(), cfg.WebhookSecret)
	if err != nil {
		return nil, err
	}

	policy, err := backoff.New(backoff.Config{
		InitialDelay: cfg.GetBackoffInitialDelay(),
		MaxDelay:     cfg.GetBackoffMaxDelay(),
		Factor:       cfg.BackoffFactor,
		Jitter:       cfg.BackoffJitter,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))
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
		recorder, deadLetter, nil, delivery.Config{
			MaxAttempts:     cfg.DeliveryMaxAttempts,
			HonorRetryAfter: cfg.HonorRetryAfter,
		}, logger)
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	case context.DeadlineExceeded:
		errShutdown <- fmt.Errorf("forcing server close: shutdown deadline exceeded")
	default:
		errShutdown <- err
	}
}
