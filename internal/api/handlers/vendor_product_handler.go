package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"buy-bye-api-server/internal/api/middleware"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/pricing"
)

type VendorProductHandler struct {
	DB *mongo.Database
}

type UpsertListingRequest struct {
	Product       string  `json:"product" binding:"required"`
	DiscountType  string  `json:"discountType" binding:"omitempty,oneof=percentage amount"`
	DiscountValue float64 `json:"discountValue"`
	InStock       *bool   `json:"inStock"`
}

// validateDiscount rejects discount descriptors that could produce negative
// or inflated prices. Percentages are bounded at write time so the pricing
// path never has to clamp them.
func validateDiscount(discountType string, value float64) string {
	switch discountType {
	case "":
		return ""
	case models.DiscountPercentage:
		if value < 0 || value > 100 {
			return "Percentage discount must be between 0 and 100"
		}
	case models.DiscountAmount:
		if value < 0 {
			return "Amount discount cannot be negative"
		}
	default:
		return "Unknown discount type"
	}
	return ""
}

// Upsert creates or refreshes the vendor's listing for a catalog product.
// The (vendor, product) pair is unique, so a second call updates in place.
func (h *VendorProductHandler) Upsert(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)

	var req UpsertListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validateDiscount(req.DiscountType, req.DiscountValue); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	productID, err := primitive.ObjectIDFromHex(req.Product)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}
	count, err := h.DB.Collection("products").CountDocuments(c.Request.Context(), bson.M{"_id": productID})
	if err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	now := time.Now()
	filter := bson.M{"vendor": vendor.ID, "product": productID}
	update := bson.M{
		"$set": bson.M{
			"discountType":  req.DiscountType,
			"discountValue": req.DiscountValue,
			"inStock":       inStock,
			"updatedAt":     now,
		},
		"$setOnInsert": bson.M{
			"vendor":    vendor.ID,
			"product":   productID,
			"createdAt": now,
		},
	}
	res, err := h.DB.Collection("vendorproducts").UpdateOne(c.Request.Context(), filter, update, options.Update().SetUpsert(true))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save listing"})
		return
	}

	status := http.StatusOK
	message := "Listing updated"
	if res.UpsertedCount > 0 {
		status = http.StatusCreated
		message = "Listing created"
	}

	var listing models.VendorProduct
	_ = h.DB.Collection("vendorproducts").FindOne(c.Request.Context(), filter).Decode(&listing)
	c.JSON(status, gin.H{"message": message, "vendorProduct": listing})
}

// ListOwn returns the authenticated vendor's listings joined to their
// catalog products and quoted prices.
func (h *VendorProductHandler) ListOwn(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)

	cursor, err := h.DB.Collection("vendorproducts").Find(c.Request.Context(), bson.M{"vendor": vendor.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	var listings []models.VendorProduct
	if err := cursor.All(c.Request.Context(), &listings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
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

	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		product, ok := products[l.Product]
		if !ok {
			continue
		}
		quote := pricing.QuoteListing(product.Price, listingDiscount(l))
		views = append(views, ListingView{
			ID:            l.ID,
			Product:       product,
			Vendor:        vendor.Summary(),
			DiscountType:  l.DiscountType,
			DiscountValue: l.DiscountValue,
			InStock:       l.InStock,
			BasePrice:     quote.BasePrice,
			FinalPrice:    quote.FinalPrice,
			CreatedAt:     l.CreatedAt,
			UpdatedAt:     l.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"count": len(views), "vendorProducts": views})
}

// loadOwned fetches a listing and enforces that it belongs to the vendor.
func (h *VendorProductHandler) loadOwned(c *gin.Context, vendorID primitive.ObjectID) (*models.VendorProduct, bool) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return nil, false
	}

	var listing models.VendorProduct
	err := h.DB.Collection("vendorproducts").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&listing)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return nil, false
	}
	if listing.Vendor != vendorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this listing"})
		return nil, false
	}
	return &listing, true
}

func (h *VendorProductHandler) GetByID(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)
	listing, ok := h.loadOwned(c, vendor.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"vendorProduct": listing})
}

type UpdateListingRequest struct {
	DiscountType  *string  `json:"discountType" binding:"omitempty,oneof=percentage amount"`
	DiscountValue *float64 `json:"discountValue"`
	InStock       *bool    `json:"inStock"`
}

func (h *VendorProductHandler) Update(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)
	listing, ok := h.loadOwned(c, vendor.ID)
	if !ok {
		return
	}

	var req UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	discountType := listing.DiscountType
	if req.DiscountType != nil {
		discountType = *req.DiscountType
	}
	discountValue := listing.DiscountValue
	if req.DiscountValue != nil {
		discountValue = *req.DiscountValue
	}
	if msg := validateDiscount(discountType, discountValue); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	set := bson.M{
		"discountType":  discountType,
		"discountValue": discountValue,
		"updatedAt":     time.Now(),
	}
	if req.InStock != nil {
		set["inStock"] = *req.InStock
	}

	_, err := h.DB.Collection("vendorproducts").UpdateOne(c.Request.Context(),
		bson.M{"_id": listing.ID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update listing"})
		return
	}

	var updated models.VendorProduct
	_ = h.DB.Collection("vendorproducts").FindOne(c.Request.Context(), bson.M{"_id": listing.ID}).Decode(&updated)
	c.JSON(http.StatusOK, gin.H{"message": "Listing updated", "vendorProduct": updated})
}

func (h *VendorProductHandler) Delete(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)
	listing, ok := h.loadOwned(c, vendor.ID)
	if !ok {
		return
	}

	_, err := h.DB.Collection("vendorproducts").DeleteOne(c.Request.Context(), bson.M{"_id": listing.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete listing"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Listing deleted"})
}
