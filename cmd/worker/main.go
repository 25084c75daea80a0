package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinetick/booking-worker/internal/config"
	"github.com/cinetick/booking-worker/internal/database"
	"github.com/cinetick/booking-worker/internal/handler"
	"github.com/cinetick/booking-worker/internal/payment"
	"github.com/cinetick/booking-worker/internal/queue"
	"github.com/cinetick/booking-worker/internal/repository"
	"github.com/cinetick/booking-worker/internal/worker"
)

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBPoolSize)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Broker unreachable at startup: exit non-zero, the process
	// supervisor owns restarts.
	consumer, err := queue.Connect(cfg.AMQPURL, cfg.QueueName, cfg.Prefetch)
	if err != nil {
		log.Fatalf("broker connect: %v", err)
	}
	defer consumer.Close()

	parker, err := queue.NewPublisher(consumer.Connection(), cfg.ParkedQueueName)
	if err != nil {
		log.Fatalf("parked queue setup: %v", err)
	}
	defer parker.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable: retry accounting disabled, failing messages will requeue indefinitely")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	exec := worker.NewExecutor(
		&payment.SimulatedGateway{Delay: cfg.PaymentDelay},
		repository.NewBookingRepo(db, cfg.UpdateLegacySeat),
		cfg.TicketAmount,
		cfg.PaymentTimeout,
		cfg.StorageTimeout,
	)
	w := worker.New(exec, worker.NewRetryTracker(rdb, cfg.RetryCounterTTL), parker, cfg.DefaultShowID, cfg.RetryMaxAttempts)

	// Ops surface: health endpoint only.
	e := echo.New()
	e.HideBanner = true
	health := &handler.Health{DB: db, Broker: consumer, Redis: rdb}
	e.GET("/healthz", health.Check)
	go func() {
		if err := e.Start(":" + cfg.OpsPort); err != nil {
			log.Printf("ops server stopped: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-stopChan
		log.Printf("received %s, draining", sig)
		cancel()
		sdCtx, sdCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer sdCancel()
		if err := e.Shutdown(sdCtx); err != nil {
			log.Printf("ops server shutdown: %v", err)
		}
	}()

	log.Printf("worker started (env=%s queue=%s prefetch=%d)", cfg.Env, cfg.QueueName, cfg.Prefetch)
	if err := consumer.Consume(ctx, w.Handle); err != nil && ctx.Err() == nil {
		log.Fatalf("consume loop ended: %v", err)
	}
	log.Printf("worker stopped")
}
