package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"buy-bye-api-server/config"
	"buy-bye-api-server/internal/database"
)

// Seeds the admin account and a small demo catalog.
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}

	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		logrus.Fatalf("could not connect to MongoDB: %v", err)
	}

	ctx := context.Background()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logrus.Fatalf("could not ensure indexes: %v", err)
	}
	if err := database.SeedAdmin(ctx, db); err != nil {
		logrus.Fatalf("could not seed admin user: %v", err)
	}
	if err := database.SeedCatalog(ctx, db); err != nil {
		logrus.Fatalf("could not seed catalog: %v", err)
	}

	logrus.Info("seeding complete")
}
