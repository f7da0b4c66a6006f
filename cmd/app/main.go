package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avolare/skybook/config"
	"github.com/avolare/skybook/internal/auth"
	"github.com/avolare/skybook/internal/bootstrap"
	"github.com/avolare/skybook/internal/cache"
	"github.com/avolare/skybook/internal/checkout"
	"github.com/avolare/skybook/internal/kafka"
	"github.com/avolare/skybook/internal/repository"
	"github.com/avolare/skybook/internal/service/booking"
	"github.com/avolare/skybook/internal/service/flights"
	"github.com/avolare/skybook/internal/service/payments"
	"github.com/avolare/skybook/internal/service/reports"
	"github.com/avolare/skybook/internal/service/users"
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

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Cache.FlightsTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	provider := checkout.NewClient(checkout.Config{
		BaseURL:       cfg.Checkout.BaseURL,
		APIKey:        cfg.Checkout.APIKey,
		WebhookSecret: cfg.Checkout.WebhookSecret,
		Currency:      cfg.Checkout.Currency,
		Method:        cfg.Checkout.Method,
	})

	authManager := auth.NewManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	userRepo := repository.NewUserRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	svc := bootstrap.Services{
		Auth:     authManager,
		Users:    users.NewUserService(userRepo, authManager),
		Flights:  flights.NewFlightService(flightRepo, redisCache),
		Bookings: booking.NewBookingService(bookingRepo, flightRepo, producer, cfg.Kafka.BookingTopic,
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic)),
		Payments: payments.NewPaymentService(paymentRepo, bookingRepo, provider, producer, cfg.Kafka.BookingTopic,
			payments.WithNotificationsTopic(cfg.Kafka.NotificationsTopic)),
		Reports:  reports.NewReportService(bookingRepo),
	}

	if err := bootstrap.Run(ctx, cfg, svc); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
