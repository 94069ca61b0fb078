package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VendorProductReview is a verified-purchase review of a vendor listing.
// One review per (customer, vendorProduct, order), enforced by a unique
// index.
type VendorProductReview struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Customer      primitive.ObjectID `bson:"customer" json:"customer"`
	VendorProduct primitive.ObjectID `bson:"vendorProduct" json:"vendorProduct"`
	Order         primitive.ObjectID `bson:"order" json:"order"`
	Rating        int                `bson:"rating" json:"rating"`
	Review        string             `bson:"review" json:"review"`

	// Optional sub-ratings.
	ProductQuality     int `bson:"productQuality,omitempty" json:"productQuality,omitempty"`
	DeliveryExperience int `bson:"deliveryExperience,omitempty" json:"deliveryExperience,omitempty"`
	ValueForMoney      int `bson:"valueForMoney,omitempty" json:"valueForMoney,omitempty"`

	IsVerified bool `bson:"isVerified" json:"isVerified"`
	IsHelpful  int  `bson:"isHelpful" json:"isHelpful"`
	IsReported bool `bson:"isReported" json:"isReported"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
