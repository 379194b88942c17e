package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafebook/internal/auth"
	"cafebook/internal/config"
	"cafebook/internal/infra"
	"cafebook/internal/repository"
	"cafebook/internal/router"
	"cafebook/internal/service"
	"cafebook/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in dev, JSON in prod
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:     cfg.JWTSecret,
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  cfg.AccessTTL(),
		RefreshTTL: cfg.RefreshTTL(),
	}, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token configuration")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	var publisher service.EventPublisher = service.NopPublisher
	if cfg.AMQPURL != "" {
		amqpPub, err := infra.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to amqp")
		}
		defer amqpPub.Close()
		publisher = amqpPub
	} else {
		log.Warn().Msg("AMQP_URL not set, invoice events are disabled")
	}

	// Worker handlers are wired here (composition root) so the pool has
	// access to every infrastructure dependency.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	if !mailer.Configured() {
		log.Warn().Msg("SMTP_HOST not set, email jobs will fail and be dead-lettered")
	}
	mailBreaker := infra.NewBreaker(infra.BreakerConfig{Name: "smtp"})
	dispatcher := worker.NewDispatcher(rdb)

	worker.StartWorkerPool(ctx, rdb, map[string]worker.Handler{
		worker.QueueEmail:   worker.NewEmailWorker(mailer, mailBreaker),
		worker.QueueReceipt: worker.NewReceiptWorker(repository.NewInvoiceRepository(db), dispatcher, cfg.PDFStoragePath),
	}, cfg.WorkerPoolSize)
	worker.StartRetryScheduler(ctx, rdb)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r, err := router.New(router.Deps{
		Config:      cfg,
		DB:          db,
		Redis:       rdb,
		Tokens:      tokens,
		Dispatcher:  dispatcher,
		Publisher:   publisher,
		MailBreaker: mailBreaker,
		Registry:    registry,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("CafeBook backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
