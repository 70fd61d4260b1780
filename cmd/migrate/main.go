package main

import (
	"context"
	"os"
	"time"

	"sandwich-shop-service/config"
	"sandwich-shop-service/internal/database"
	"sandwich-shop-service/internal/logger"
	"sandwich-shop-service/internal/migrate"

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

	cfg := config.LoadMigrate(log)

	db := database.ConnectDB(&cfg.DB.Config, log)
	defer database.CloseDB(db, log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrate.MigrateStorefrontDB(ctx, db, log, migrate.DefaultMigrateOptions()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("migration complete")
}
