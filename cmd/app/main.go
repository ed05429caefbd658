package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airbooking-modify/api"
	"github.com/Domenick1991/airbooking-modify/config"
	"github.com/Domenick1991/airbooking-modify/internal/bootstrap"
	"github.com/Domenick1991/airbooking-modify/internal/cache"
	"github.com/Domenick1991/airbooking-modify/internal/kafka"
	"github.com/Domenick1991/airbooking-modify/internal/logging"
	"github.com/Domenick1991/airbooking-modify/internal/repository"
	"github.com/Domenick1991/airbooking-modify/internal/service/booking"
	"github.com/Domenick1991/airbooking-modify/internal/service/flights"
	"github.com/Domenick1991/airbooking-modify/internal/service/modification"
	"github.com/Domenick1991/airbooking-modify/internal/service/requests"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("could not read .env")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Modification)
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		log.WithError(err).Warn("redis unavailable, drafts will fail until it recovers")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer producer.Close()
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := producer.CheckConnection(checkCtx); err != nil {
		log.WithError(err).Warn("kafka unavailable, events will be dropped")
	}
	cancel()

	bookingRepo := repository.NewBookingRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	fareRepo := repository.NewFareRepository(db)

	fareService := flights.NewFareService(fareRepo, redisCache, log)
	bookingService := booking.NewBookingService(bookingRepo, requestRepo, redisCache, log,
		booking.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	requestService := requests.NewRequestService(bookingRepo, requestRepo, log,
		requests.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
		requests.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	modificationService := modification.NewModificationService(
		bookingRepo, requestRepo, redisCache, redisCache, fareService, log,
		modification.WithProducer(producer, cfg.Kafka.BookingEventsTopic),
		modification.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := api.RegisterValidators(); err != nil {
		log.Fatalf("register validators: %v", err)
	}
	router := api.NewRouter(cfg.HTTP, log, api.Handlers{
		Bookings: api.NewBookingHandler(bookingService),
		Drafts:   api.NewDraftHandler(modificationService),
		Requests: api.NewRequestHandler(requestService),
		Fares:    api.NewFareHandler(fareService),
	},
		api.HealthCheck{Name: "postgres", Check: db.PingContext},
		api.HealthCheck{Name: "redis", Check: redisCache.Ping},
	)

	if err := bootstrap.Run(ctx, cfg, router, log); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
