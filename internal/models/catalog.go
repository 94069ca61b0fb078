package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

type SubCategory struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Category primitive.ObjectID `bson:"category" json:"category"`
	// 1 when the sub-category participates in recipe suggestions.
	FoodRecipe int `bson:"food_reciepe" json:"food_reciepe"`
}

// Product is a shared catalog entry. Vendors sell it through VendorProduct
// listings; the catalog itself carries no stock or discount.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title       string             `bson:"title" json:"title"`
	Price       Price              `bson:"price" json:"price"`
	ImageURL    string             `bson:"imageUrl" json:"imageUrl"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Category    primitive.ObjectID `bson:"category" json:"category"`
	SubCategory primitive.ObjectID `bson:"subCategory" json:"subCategory"`
}

// NamedRef replaces a bare ObjectID reference in responses that join the
// referenced document's name, mirroring a populate("...", "name").
type NamedRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"name"`
}

// ProductView is a product response with category names joined in.
type ProductView struct {
	ID          primitive.ObjectID `json:"_id"`
	Title       string             `json:"title"`
	Price       Price              `json:"price"`
	ImageURL    string             `json:"imageUrl"`
	Description string             `json:"description,omitempty"`
	Category    NamedRef           `json:"category"`
	SubCategory NamedRef           `json:"subCategory"`
}
