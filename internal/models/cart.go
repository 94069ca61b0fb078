package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	VendorProduct primitive.ObjectID `bson:"vendorProduct" json:"vendorProduct"`
	Quantity      int                `bson:"quantity" json:"quantity"`
}

// Cart holds at most one document per customer.
type Cart struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Customer    primitive.ObjectID `bson:"customer" json:"customer"`
	Items       []CartItem         `bson:"items" json:"items"`
	LastUpdated time.Time          `bson:"lastUpdated" json:"lastUpdated"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
