package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sandwich-shop-service/config"
	"sandwich-shop-service/internal/cache"
	"sandwich-shop-service/internal/database"
	"sandwich-shop-service/internal/logger"
	"sandwich-shop-service/internal/producer"
	"sandwich-shop-service/internal/repository"
	"sandwich-shop-service/internal/service"
	transport "sandwich-shop-service/internal/transport/http"

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

	cfg := config.Load(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	repo := repository.New(db)

	var notifier service.Notifier
	var kafkaProducer *producer.NotificationProducer
	if cfg.Kafka.Enabled {
		kafkaProducer = producer.NewNotificationProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.AdminEmail)
		notifier = kafkaProducer
		defer kafkaProducer.Close()
		log.Info("kafka notifications enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	} else {
		log.Warn("kafka disabled, notifications will be logged only")
	}

	var dedup service.EventDeduper
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, log)
		if err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		defer redisClient.Close()
		dedup = redisClient
	} else {
		log.Warn("redis disabled, webhook dedup falls back to order status guards")
	}

	inventorySvc := service.NewInventoryService(repo, log)
	orderSvc := service.NewOrderService(repo, inventorySvc, notifier, log)
	paymentSvc := service.NewPaymentService(repo, inventorySvc, notifier, dedup, log)
	menuSvc := service.NewMenuService(repo, log)
	dropSvc := service.NewDropService(repo, log)

	router := transport.NewRouter(transport.RouterOptions{
		Orders:      transport.NewOrderHandler(orderSvc, log),
		Drops:       transport.NewDropHandler(dropSvc, menuSvc, log),
		Webhooks:    transport.NewWebhookHandler(paymentSvc, cfg.StripeWebhookSecret, log),
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("http server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
}
