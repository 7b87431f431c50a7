package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/avelar/clinic-api/internal/config"
	"github.com/avelar/clinic-api/internal/email"
	"github.com/avelar/clinic-api/internal/repository/postgres"
	"github.com/avelar/clinic-api/pkg/logger"
	messagingredis "github.com/avelar/clinic-api/pkg/messaging/redis"
	"github.com/avelar/clinic-api/pkg/metrics"
	"github.com/avelar/clinic-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:   logger.ParseLevel(cfg.Log.Level),
		Pretty:  cfg.Log.Pretty,
		Service: "clinic-worker",
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := messagingredis.NewRedisBroker(messagingredis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer broker.Close()

	m := metrics.New("clinic_worker")
	emailSvc := email.NewService(cfg.Email, log, m)
	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(outboxRepo, emailSvc, broker, worker.OutboxProcessorConfig{
		BatchSize:       cfg.Worker.BatchSize,
		PollInterval:    cfg.Worker.PollInterval,
		MaxRetries:      cfg.Worker.MaxRetries,
		RetentionPeriod: cfg.Worker.RetentionPeriod,
		EventChannel:    cfg.Redis.EventChannel,
	}, log, m)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	processor.Start(ctx)
}
