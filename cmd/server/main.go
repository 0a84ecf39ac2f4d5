package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bizledger/internal/config"
	"bizledger/internal/events"
	"bizledger/internal/events/kafka"
	"bizledger/internal/infra"
	"bizledger/internal/repository"
	"bizledger/internal/router"
	"bizledger/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title BizLedger API
// @version 1.0
// @description Ledger, inventory and sales backend for small businesses.
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogger(cfg)

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	log.Info().Msg("database connected, migrations applied")

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	log.Info().Msg("redis connected")

	// Event stream is optional: no brokers configured means no publishing.
	var publisher events.Publisher = events.Noop{}
	if cfg.KafkaBrokers != "" {
		publisher = kafka.NewPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		log.Info().Str("topic", cfg.KafkaTopic).Msg("kafka publisher enabled")
	}
	defer publisher.Close()

	// Background job pipeline: receipts → PDF → email behind a circuit breaker.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := worker.NewDispatcher(rdb)
	mailer := infra.NewMailer(cfg)
	mailerCB := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: cfg.MailerCBFailureThreshold,
		SuccessThreshold: cfg.MailerCBSuccessThreshold,
		OpenTimeout:      time.Duration(cfg.MailerCBOpenTimeoutSec) * time.Second,
	})

	saleRepo := repository.NewSaleRepository(db)
	handlers := map[string]worker.Handler{
		worker.QueueReceipt: worker.NewReceiptWorker(saleRepo, dispatcher, cfg.StoreName, cfg.PDFStoragePath),
		worker.QueueEmail:   worker.NewEmailWorker(mailer, mailerCB),
	}
	worker.StartWorkerPool(ctx, rdb, cfg.WorkerPoolSize, handlers)
	worker.StartRetryCron(ctx, worker.RetryCronConfig{RDB: rdb, CB: mailerCB})

	engine := router.New(cfg, db, rdb, publisher, dispatcher, mailerCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown: stop accepting requests, then stop workers.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel() // stops the worker pool and retry cron
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("error closing redis")
	}
	log.Info().Msg("server stopped")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
