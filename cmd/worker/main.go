package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/airbooking-modify/config"
	"github.com/Domenick1991/airbooking-modify/internal/domain"
	"github.com/Domenick1991/airbooking-modify/internal/email"
	"github.com/Domenick1991/airbooking-modify/internal/kafka"
	"github.com/Domenick1991/airbooking-modify/internal/logging"
	"github.com/Domenick1991/airbooking-modify/internal/repository"
	"github.com/Domenick1991/airbooking-modify/internal/service/requests"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer db.Close()

	requestService := requests.NewRequestService(
		repository.NewBookingRepository(db),
		repository.NewRequestRepository(db),
		log,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, log)
	defer consumer.Close()

	emailSender := email.NewSender(log)

	go func() {
		if err := consumer.Consume(ctx, emailSender.Send); err != nil {
			log.WithError(err).Error("consumer stopped")
			stop()
		}
	}()

	reportTicker := time.NewTicker(cfg.Worker.PendingReportInterval)
	defer reportTicker.Stop()

	log.WithField("topic", cfg.Kafka.NotificationsTopic).Info("worker started")
	for {
		select {
		case <-reportTicker.C:
			backlog, err := requestService.PendingBacklog(ctx)
			if err != nil {
				log.WithError(err).Warn("pending backlog report failed")
				continue
			}
			if backlog.Total == 0 {
				continue
			}
			log.WithFields(logrus.Fields{
				"pending":       backlog.Total,
				"modification":  backlog.ByKind[domain.RequestKindModification],
				"cancellation":  backlog.ByKind[domain.RequestKindCancellation],
				"oldest_age_hr": backlog.OldestAge.Hours(),
			}).Info("requests awaiting review")
		case <-ctx.Done():
			log.Info("shutting down")
			return
		}
	}
}
