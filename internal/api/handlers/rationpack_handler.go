package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"buy-bye-api-server/internal/geo"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/pricing"
	"buy-bye-api-server/internal/rationpack"
)

type RationPackHandler struct {
	DB *mongo.Database
}

type RationPackRequest struct {
	Products []string `json:"products" binding:"required,min=1"`
	Lat      float64  `json:"lat" binding:"required"`
	Lng      float64  `json:"lng" binding:"required"`
	Radius   float64  `json:"radius"`
	SortBy   string   `json:"sortBy"`
}

// Compare resolves a shopping list against every nearby vendor's stock and
// returns one priced bundle per vendor that can supply at least one item.
func (h *RationPackHandler) Compare(c *gin.Context) {
	var req RationPackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Radius <= 0 {
		req.Radius = geo.DefaultRadiusKm
	}
	if req.SortBy == "" {
		req.SortBy = geo.SortCheapest
	}
	center := geo.Point{Lng: req.Lng, Lat: req.Lat}

	vendors, err := findNearbyVendors(c, h.DB, center, req.Radius, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search vendors"})
		return
	}

	stocks := make([]rationpack.VendorStock, 0, len(vendors))
	for _, vendor := range vendors {
		// Ascending listing id keeps the first-match tie-break stable.
		cursor, err := h.DB.Collection("vendorproducts").Find(c.Request.Context(),
			bson.M{"vendor": vendor.ID, "inStock": true},
			options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vendor stock"})
			return
		}
		var listings []models.VendorProduct
		if err := cursor.All(c.Request.Context(), &listings); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vendor stock"})
			return
		}

		productIDs := make([]primitive.ObjectID, 0, len(listings))
		for _, l := range listings {
			productIDs = append(productIDs, l.Product)
		}
		products, err := productsByID(c, h.DB, productIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
			return
		}

		entries := make([]rationpack.StockEntry, 0, len(listings))
		for _, l := range listings {
			product, ok := products[l.Product]
			if !ok {
				continue
			}
			entries = append(entries, rationpack.StockEntry{
				ListingID: l.ID,
				ProductID: product.ID,
				Title:     product.Title,
				ImageURL:  product.ImageURL,
				Price:     product.Price,
				Discount:  pricing.Discount{Type: l.DiscountType, Value: l.DiscountValue},
			})
		}

		stocks = append(stocks, rationpack.VendorStock{
			ID:       vendor.ID,
			Name:     vendor.Name,
			Location: vendor.Location,
			Listings: entries,
		})
	}

	bundles := rationpack.Build(req.Products, stocks)
	rationpack.Rank(bundles, req.SortBy, center)

	c.JSON(http.StatusOK, gin.H{
		"message":     "Ration pack comparison retrieved successfully",
		"count":       len(bundles),
		"rationPacks": bundles,
	})
}
