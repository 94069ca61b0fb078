// Package jobs holds background maintenance tasks.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ExpireVerificationTokens clears email tokens and phone codes that passed
// their expiry, so stale links cannot linger in the documents.
func ExpireVerificationTokens(ctx context.Context, db *mongo.Database) error {
	now := time.Now()

	emailFilter := bson.M{"emailVerificationExpires": bson.M{"$lt": now}}
	emailUnset := bson.M{"$unset": bson.M{
		"emailVerificationToken":   "",
		"emailVerificationExpires": "",
	}}

	for _, collection := range []string{"customers", "vendors"} {
		res, err := db.Collection(collection).UpdateMany(ctx, emailFilter, emailUnset)
		if err != nil {
			return err
		}
		if res.ModifiedCount > 0 {
			logrus.Infof("cleared %d expired email verification tokens from %s", res.ModifiedCount, collection)
		}
	}

	phoneFilter := bson.M{"phoneVerificationExpires": bson.M{"$lt": now}}
	phoneUnset := bson.M{"$unset": bson.M{
		"phoneVerificationCode":    "",
		"phoneVerificationExpires": "",
	}}
	res, err := db.Collection("vendors").UpdateMany(ctx, phoneFilter, phoneUnset)
	if err != nil {
		return err
	}
	if res.ModifiedCount > 0 {
		logrus.Infof("cleared %d expired phone verification codes", res.ModifiedCount)
	}
	return nil
}

// Start schedules the maintenance jobs and returns the running scheduler.
func Start(db *mongo.Database) *cron.Cron {
	c := cron.New()
	c.AddFunc("@hourly", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := ExpireVerificationTokens(ctx, db); err != nil {
			logrus.Errorf("verification token cleanup failed: %v", err)
		}
	})
	c.Start()
	return c
}
