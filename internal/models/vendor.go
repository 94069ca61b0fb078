package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vendor struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	// Optional storefront metadata used by search filters.
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	VendorType  string `bson:"vendorType,omitempty" json:"vendorType,omitempty"` // e.g. "grocery", "butcher", "bakery"

	IsEmailVerified          bool       `bson:"isEmailVerified" json:"isEmailVerified"`
	EmailVerificationToken   string     `bson:"emailVerificationToken,omitempty" json:"-"`
	EmailVerificationExpires *time.Time `bson:"emailVerificationExpires,omitempty" json:"-"`

	IsPhoneVerified          bool       `bson:"isPhoneVerified" json:"isPhoneVerified"`
	PhoneVerificationCode    string     `bson:"phoneVerificationCode,omitempty" json:"-"`
	PhoneVerificationExpires *time.Time `bson:"phoneVerificationExpires,omitempty" json:"-"`

	// Active only after email or phone is verified.
	IsActive bool `bson:"isActive" json:"isActive"`

	Location GeoPoint `bson:"location" json:"location"`

	ResetPasswordToken   string     `bson:"resetPasswordToken,omitempty" json:"-"`
	ResetPasswordExpires *time.Time `bson:"resetPasswordExpires,omitempty" json:"-"`

	LastLogin *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// VendorSummary is the slice of vendor fields embedded in search results,
// ration packs and populated cart/order items.
type VendorSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Location GeoPoint           `bson:"location" json:"location"`
}

func (v Vendor) Summary() VendorSummary {
	return VendorSummary{ID: v.ID, Name: v.Name, Location: v.Location}
}
