package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount descriptors on a listing. An empty type means no discount; the
// pricing package interprets the pair.
const (
	DiscountPercentage = "percentage"
	DiscountAmount     = "amount"
)

// VendorProduct is a vendor's sellable instance of a catalog product,
// carrying the vendor-specific stock flag and discount.
type VendorProduct struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Vendor        primitive.ObjectID `bson:"vendor" json:"vendor"`
	Product       primitive.ObjectID `bson:"product" json:"product"`
	DiscountType  string             `bson:"discountType,omitempty" json:"discountType,omitempty"`
	DiscountValue float64            `bson:"discountValue" json:"discountValue"`
	InStock       bool               `bson:"inStock" json:"inStock"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
