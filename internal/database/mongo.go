package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"buy-bye-api-server/config"
)

// Connect opens the Mongo client and pings the deployment.
func Connect(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the indexes the queries rely on. All creations are
// idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// 2dsphere indexes back every $geoWithin/$centerSphere query.
	geoIndex := mongo.IndexModel{Keys: bson.D{{Key: "location", Value: "2dsphere"}}}

	unique := options.Index().SetUnique(true)
	sparseUnique := options.Index().SetUnique(true).SetSparse(true)

	indexes := map[string][]mongo.IndexModel{
		"vendors": {
			geoIndex,
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: sparseUnique},
		},
		"customers": {
			geoIndex,
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: sparseUnique},
		},
		"vendorproducts": {
			{Keys: bson.D{{Key: "vendor", Value: 1}, {Key: "product", Value: 1}}, Options: unique},
		},
		"carts": {
			{Keys: bson.D{{Key: "customer", Value: 1}}, Options: unique},
		},
		"orders": {
			{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "items.vendor", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		"vendorproductreviews": {
			{Keys: bson.D{{Key: "vendorProduct", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "customer", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{
				{Key: "customer", Value: 1},
				{Key: "vendorProduct", Value: 1},
				{Key: "order", Value: 1},
			}, Options: unique},
		},
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
