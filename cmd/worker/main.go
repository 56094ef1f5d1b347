package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/skygate/skygate-booking/config"
	"github.com/skygate/skygate-booking/internal/cache"
	"github.com/skygate/skygate-booking/internal/email"
	"github.com/skygate/skygate-booking/internal/kafka"
	"github.com/skygate/skygate-booking/internal/logging"
	"github.com/skygate/skygate-booking/internal/repository"
	"github.com/skygate/skygate-booking/internal/service/booking"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	holdTTL := time.Duration(cfg.Booking.HoldTTLMinutes) * time.Minute
	redisCache := cache.NewRedisCache(cfg.Redis,
		time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second,
		time.Duration(cfg.Booking.SeatMapCacheTTLHours)*time.Hour,
	)

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	bookingService := booking.NewBookingService(
		flightRepo,
		ticketRepo,
		orderRepo,
		redisCache,
		producer,
		logger,
		cfg.Kafka.OrdersTopic,
		holdTTL,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender(logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.OrderEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				logger.Warn("decode order event", zap.Error(err))
				return nil
			}
			return emailSender.Send(ctx, event)
		})
	})

	g.Go(func() error {
		sweep := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
		defer sweep.Stop()

		for {
			select {
			case <-sweep.C:
				expired, err := bookingService.ExpirePendingOrders(ctx)
				if err != nil {
					logger.Error("expire pending orders", zap.Error(err))
					continue
				}
				if len(expired) > 0 {
					logger.Info("expired pending orders", zap.Int("count", len(expired)))
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Fatal("worker stopped", zap.Error(err))
	}
	logger.Info("worker shut down")
}
