package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"buy-bye-api-server/config"
	"buy-bye-api-server/internal/api/routes"
	"buy-bye-api-server/internal/database"
	"buy-bye-api-server/internal/geocode"
	"buy-bye-api-server/internal/jobs"
	"buy-bye-api-server/internal/notify"
	"buy-bye-api-server/internal/s3"
	"buy-bye-api-server/internal/socket"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		logrus.Fatalf("could not load config: %v", err)
	}

	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		logrus.Fatalf("could not connect to MongoDB: %v", err)
	}
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		logrus.Fatalf("could not ensure indexes: %v", err)
	}

	var geocoder *geocode.Client
	if cfg.Geocode.APIKey != "" {
		geocoder, err = geocode.NewClient(cfg.Geocode)
		if err != nil {
			logrus.Fatalf("could not create geocoding client: %v", err)
		}
	} else {
		logrus.Warn("geocoding disabled: no API key configured")
	}

	var mailer *notify.Mailer
	if cfg.Email.Host != "" {
		mailer = notify.NewMailer(cfg.Email, cfg.Server.BaseURL)
	} else {
		logrus.Warn("email disabled: no SMTP host configured")
	}

	sms := notify.NewSMSSender(cfg.SMS)

	pusher, err := notify.NewPusher(context.Background(), cfg.Firebase)
	if err != nil {
		logrus.Warnf("push notifications disabled: %v", err)
	}

	var uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			logrus.Fatalf("could not create S3 uploader: %v", err)
		}
	} else {
		logrus.Warn("image uploads disabled: no S3 bucket configured")
	}

	wsHub := socket.NewHub()

	scheduler := jobs.Start(db)
	defer scheduler.Stop()

	router := routes.SetupRouter(cfg, db, geocoder, mailer, sms, pusher, uploader, wsHub)

	logrus.Infof("starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("failed to run server: %v", err)
	}
}
