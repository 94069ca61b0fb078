package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Customer struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`

	IsEmailVerified          bool       `bson:"isEmailVerified" json:"isEmailVerified"`
	EmailVerificationToken   string     `bson:"emailVerificationToken,omitempty" json:"-"`
	EmailVerificationExpires *time.Time `bson:"emailVerificationExpires,omitempty" json:"-"`

	// Active only after the email is verified.
	IsActive bool `bson:"isActive" json:"isActive"`

	// Last known location, optional.
	Location *GeoPoint `bson:"location,omitempty" json:"location,omitempty"`

	PushToken string `bson:"pushToken,omitempty" json:"-"`

	LastLogin *time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}
