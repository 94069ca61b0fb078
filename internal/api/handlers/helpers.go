// Package handlers implements the HTTP layer. Each handler struct holds the
// database handle plus the side-channel services it needs; pure logic lives
// in the geo, pricing and rationpack packages.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/internal/geo"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/pricing"
)

// objectIDParam parses the :name path parameter and writes a 400 on failure.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s", name)})
		return primitive.NilObjectID, false
	}
	return id, true
}

// centerFromQuery resolves the search center from lat/lng query parameters,
// falling back to the customer's stored location. Writes a 400 when neither
// is usable.
func centerFromQuery(c *gin.Context, customer *models.Customer) (geo.Point, bool) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat == nil && errLng == nil {
			return geo.Point{Lng: lng, Lat: lat}, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lat/lng"})
		return geo.Point{}, false
	}
	if customer != nil && customer.Location != nil && customer.Location.HasCoordinates() {
		return geo.Point{Lng: customer.Location.Lng(), Lat: customer.Location.Lat()}, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Location is required. Provide lat/lng or update your profile location."})
	return geo.Point{}, false
}

// geoWithinFilter builds the $centerSphere vendor filter for a radius in km.
func geoWithinFilter(center geo.Point, radiusKm float64) bson.M {
	return bson.M{
		"$geoWithin": bson.M{
			"$centerSphere": []interface{}{
				[]float64{center.Lng, center.Lat},
				geo.RadiusRadians(radiusKm),
			},
		},
	}
}

// findNearbyVendors returns active vendors within radiusKm of center,
// with extra narrowing the match further.
func findNearbyVendors(c *gin.Context, db *mongo.Database, center geo.Point, radiusKm float64, extra bson.M) ([]models.Vendor, error) {
	filter := bson.M{
		"isActive": true,
		"location": geoWithinFilter(center, radiusKm),
	}
	for k, v := range extra {
		filter[k] = v
	}
	cursor, err := db.Collection("vendors").Find(c.Request.Context(), filter)
	if err != nil {
		return nil, err
	}
	var vendors []models.Vendor
	if err := cursor.All(c.Request.Context(), &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

// productsByID loads the catalog products for the given ids into a map.
func productsByID(c *gin.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := db.Collection("products").Find(c.Request.Context(), bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := cursor.All(c.Request.Context(), &products); err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// vendorSummariesByID loads vendor summaries for the given ids into a map.
func vendorSummariesByID(c *gin.Context, db *mongo.Database, ids []primitive.ObjectID) (map[primitive.ObjectID]models.VendorSummary, error) {
	out := make(map[primitive.ObjectID]models.VendorSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := db.Collection("vendors").Find(c.Request.Context(), bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var vendors []models.Vendor
	if err := cursor.All(c.Request.Context(), &vendors); err != nil {
		return nil, err
	}
	for _, v := range vendors {
		out[v.ID] = v.Summary()
	}
	return out, nil
}

// ratingStats carries the review aggregation joined onto listings.
type ratingStats struct {
	Average float64
	Count   int
}

// ratingsByListing aggregates average rating and review count per listing.
func ratingsByListing(c *gin.Context, db *mongo.Database, listingIDs []primitive.ObjectID) (map[primitive.ObjectID]ratingStats, error) {
	out := make(map[primitive.ObjectID]ratingStats, len(listingIDs))
	if len(listingIDs) == 0 {
		return out, nil
	}
	pipeline := []bson.M{
		{"$match": bson.M{"vendorProduct": bson.M{"$in": listingIDs}}},
		{"$group": bson.M{
			"_id":           "$vendorProduct",
			"averageRating": bson.M{"$avg": "$rating"},
			"reviewCount":   bson.M{"$sum": 1},
		}},
	}
	cursor, err := db.Collection("vendorproductreviews").Aggregate(c.Request.Context(), pipeline)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID            primitive.ObjectID `bson:"_id"`
		AverageRating float64            `bson:"averageRating"`
		ReviewCount   int                `bson:"reviewCount"`
	}
	if err := cursor.All(c.Request.Context(), &rows); err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = ratingStats{Average: pricing.Round2(r.AverageRating), Count: r.ReviewCount}
	}
	return out, nil
}

// ListingView is a vendor listing joined to its catalog product and vendor,
// annotated with pricing and, where relevant, distance and ratings.
type ListingView struct {
	ID            primitive.ObjectID   `json:"_id"`
	Product       models.Product       `json:"product"`
	Vendor        models.VendorSummary `json:"vendor"`
	DiscountType  string               `json:"discountType,omitempty"`
	DiscountValue float64              `json:"discountValue,omitempty"`
	InStock       bool                 `json:"inStock"`
	BasePrice     float64              `json:"basePrice"`
	FinalPrice    float64              `json:"finalPrice"`
	Distance      float64              `json:"distance,omitempty"`
	AverageRating float64              `json:"averageRating"`
	ReviewCount   int                  `json:"reviewCount"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// listingDiscount converts the stored discount descriptor.
func listingDiscount(vp models.VendorProduct) pricing.Discount {
	return pricing.Discount{Type: vp.DiscountType, Value: vp.DiscountValue}
}

// nextOrderNumber issues the next YYMMDDNNNN order number by counting the
// orders already created today.
func nextOrderNumber(c *gin.Context, db *mongo.Database) (string, error) {
	prefix := time.Now().Format("060102")
	count, err := db.Collection("orders").CountDocuments(c.Request.Context(), bson.M{
		"orderNumber": bson.M{"$regex": "^" + prefix},
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, count+1), nil
}

// paginationParams reads page/limit query parameters with sane bounds.
func paginationParams(c *gin.Context, defaultLimit int64) (page, limit, skip int64) {
	page, _ = strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", strconv.FormatInt(defaultLimit, 10)), 10, 64)
	if limit < 1 || limit > 100 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}
