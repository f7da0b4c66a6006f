package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avolare/skybook/config"
	"github.com/avolare/skybook/internal/checkout"
	"github.com/avolare/skybook/internal/email"
	"github.com/avolare/skybook/internal/kafka"
	"github.com/avolare/skybook/internal/repository"
	"github.com/avolare/skybook/internal/service/payments"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	provider := checkout.NewClient(checkout.Config{
		BaseURL:       cfg.Checkout.BaseURL,
		APIKey:        cfg.Checkout.APIKey,
		WebhookSecret: cfg.Checkout.WebhookSecret,
		Currency:      cfg.Checkout.Currency,
		Method:        cfg.Checkout.Method,
	})

	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	paymentService := payments.NewPaymentService(paymentRepo, bookingRepo, provider, producer, cfg.Kafka.BookingTopic,
		payments.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	pendingAge := time.Duration(cfg.Worker.PendingAgeMinutes) * time.Minute
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.ReconcileSweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	for {
		select {
		case <-sweepTicker.C:
			settled, err := paymentService.ReconcilePending(ctx, pendingAge)
			if err != nil {
				log.Printf("reconcile pending payments: %v", err)
				continue
			}
			if settled > 0 {
				log.Printf("settled %d pending payments", settled)
			}
		case <-ctx.Done():
			log.Printf("shutting down")
			return
		}
	}
}
