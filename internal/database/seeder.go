package database

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/internal/auth"
	"buy-bye-api-server/internal/models"
)

// SeedAdmin creates the default back-office admin if none exists.
func SeedAdmin(ctx context.Context, db *mongo.Database) error {
	users := db.Collection("users")
	adminEmail := "admin@buy-bye.example"

	count, err := users.CountDocuments(ctx, bson.M{"email": adminEmail})
	if err != nil {
		return err
	}
	if count > 0 {
		logrus.Info("admin already exists, seeding skipped")
		return nil
	}

	hashed, err := auth.HashPassword("changeme")
	if err != nil {
		return err
	}

	_, err = users.InsertOne(ctx, models.User{
		Name:     "Admin",
		Email:    adminEmail,
		Password: hashed,
		Role:     models.RoleAdmin,
		Address:  "head office",
		Phone:    "+920000000000",
		JoinDate: time.Now(),
	})
	if err != nil {
		return err
	}
	logrus.Info("admin seeded")
	return nil
}

// SeedCatalog loads a starter category tree and a handful of products so a
// fresh environment has something to search.
func SeedCatalog(ctx context.Context, db *mongo.Database) error {
	categories := db.Collection("categories")

	count, err := categories.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		logrus.Info("catalog already seeded, skipping")
		return nil
	}

	grocery := models.Category{Name: "Grocery"}
	res, err := categories.InsertOne(ctx, grocery)
	if err != nil {
		return err
	}
	groceryID := res.InsertedID.(primitive.ObjectID)

	subs := db.Collection("subcategories")
	staples := models.SubCategory{Name: "Staples", Category: groceryID, FoodRecipe: 1}
	subRes, err := subs.InsertOne(ctx, staples)
	if err != nil {
		return err
	}
	staplesID := subRes.InsertedID.(primitive.ObjectID)

	products := []interface{}{
		models.Product{
			Title:       "Basmati Rice 5kg",
			Price:       models.PriceFromString("Rs. 1,250"),
			ImageURL:    "https://example.com/images/rice.jpg",
			Category:    groceryID,
			SubCategory: staplesID,
		},
		models.Product{
			Title:       "Cooking Oil 1L",
			Price:       models.PriceFromString("Rs. 550"),
			ImageURL:    "https://example.com/images/oil.jpg",
			Category:    groceryID,
			SubCategory: staplesID,
		},
		models.Product{
			Title:       "Sugar 1kg",
			Price:       models.PriceFromString("Rs. 180"),
			ImageURL:    "https://example.com/images/sugar.jpg",
			Category:    groceryID,
			SubCategory: staplesID,
		},
	}
	if _, err := db.Collection("products").InsertMany(ctx, products); err != nil {
		return err
	}

	logrus.Info("catalog seeded")
	return nil
}
