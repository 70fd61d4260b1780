package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sandwich-shop-service/config"
	"sandwich-shop-service/internal/consumer"
	"sandwich-shop-service/internal/logger"
	"sandwich-shop-service/internal/sender"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	if err := logger.Init(os.Getenv("ENV") == "development"); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	cfg := config.LoadNotifier(log)

	emailSender := sender.NewEmailSender(cfg)
	kafkaConsumer := consumer.NewKafkaEmailConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, emailSender, log)
	defer kafkaConsumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := kafkaConsumer.Run(ctx); err != nil {
		log.Fatal("consumer stopped", zap.Error(err))
	}
	log.Info("notifier stopped")
}
