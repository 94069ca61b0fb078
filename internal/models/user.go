package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleConsumer = "Consumer"
	RoleVendor   = "Vendor"
	RoleAdmin    = "Admin"
)

// User is a back-office account (admins and legacy consumer/vendor
// records), distinct from the Customer and Vendor collections.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`
	Address  string             `bson:"address" json:"address"`
	Phone    string             `bson:"phone" json:"phone"`
	JoinDate time.Time          `bson:"joinDate" json:"joinDate"`
}
