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

type ReviewHandler struct {
	DB *mongo.Database
}

type SubmitReviewRequest struct {
	VendorProduct      string `json:"vendorProduct" binding:"required"`
	Order              string `json:"order" binding:"required"`
	Rating             int    `json:"rating" binding:"required,min=1,max=5"`
	Review             string `json:"review"`
	ProductQuality     int    `json:"productQuality" binding:"omitempty,min=1,max=5"`
	DeliveryExperience int    `json:"deliveryExperience" binding:"omitempty,min=1,max=5"`
	ValueForMoney      int    `json:"valueForMoney" binding:"omitempty,min=1,max=5"`
}

// Submit records a verified-purchase review: the order must belong to the
// reviewer, be delivered, and contain the listing being reviewed.
func (h *ReviewHandler) Submit(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listingID, err := primitive.ObjectIDFromHex(req.VendorProduct)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendorProduct id"})
		return
	}
	orderID, err := primitive.ObjectIDFromHex(req.Order)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var order models.Order
	err = h.DB.Collection("orders").FindOne(c.Request.Context(), bson.M{
		"_id":      orderID,
		"customer": customer.ID,
	}).Decode(&order)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	if order.Status != models.OrderDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only delivered orders can be reviewed"})
		return
	}

	inOrder := false
	for _, item := range order.Items {
		if item.VendorProduct != nil && *item.VendorProduct == listingID {
			inOrder = true
			break
		}
	}
	if !inOrder {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This product is not part of the order"})
		return
	}

	count, err := h.DB.Collection("vendorproductreviews").CountDocuments(c.Request.Context(), bson.M{
		"customer":      customer.ID,
		"vendorProduct": listingID,
		"order":         orderID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing reviews"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "You have already reviewed this product for this order"})
		return
	}

	now := time.Now()
	review := models.VendorProductReview{
		Customer:           customer.ID,
		VendorProduct:      listingID,
		Order:              orderID,
		Rating:             req.Rating,
		Review:             req.Review,
		ProductQuality:     req.ProductQuality,
		DeliveryExperience: req.DeliveryExperience,
		ValueForMoney:      req.ValueForMoney,
		IsVerified:         true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	res, err := h.DB.Collection("vendorproductreviews").InsertOne(c.Request.Context(), review)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}
	review.ID = res.InsertedID.(primitive.ObjectID)

	c.JSON(http.StatusCreated, gin.H{"message": "Review submitted", "review": review})
}

// ListForListing returns a listing's reviews with pagination and the
// aggregate rating breakdown.
func (h *ReviewHandler) ListForListing(c *gin.Context) {
	listingID, ok := objectIDParam(c, "vendorProductId")
	if !ok {
		return
	}

	page, limit, skip := paginationParams(c, 10)
	filter := bson.M{"vendorProduct": listingID}

	total, err := h.DB.Collection("vendorproductreviews").CountDocuments(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := h.DB.Collection("vendorproductreviews").Find(c.Request.Context(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}
	var reviews []models.VendorProductReview
	if err := cursor.All(c.Request.Context(), &reviews); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}

	pipeline := []bson.M{
		{"$match": filter},
		{"$group": bson.M{
			"_id":           nil,
			"averageRating": bson.M{"$avg": "$rating"},
			"ratings":       bson.M{"$push": "$rating"},
		}},
	}
	aggCursor, err := h.DB.Collection("vendorproductreviews").Aggregate(c.Request.Context(), pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate ratings"})
		return
	}
	var agg []struct {
		AverageRating float64 `bson:"averageRating"`
		Ratings       []int   `bson:"ratings"`
	}
	if err := aggCursor.All(c.Request.Context(), &agg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate ratings"})
		return
	}

	stats := gin.H{
		"averageRating": 0.0,
		"totalReviews":  total,
		"breakdown":     map[int]int{},
	}
	if len(agg) > 0 {
		breakdown := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
		for _, r := range agg[0].Ratings {
			breakdown[r]++
		}
		stats["averageRating"] = pricing.Round2(agg[0].AverageRating)
		stats["breakdown"] = breakdown
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"stats":   stats,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// MyReviews lists the authenticated customer's reviews.
func (h *ReviewHandler) MyReviews(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	cursor, err := h.DB.Collection("vendorproductreviews").Find(c.Request.Context(),
		bson.M{"customer": customer.ID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}
	var reviews []models.VendorProductReview
	if err := cursor.All(c.Request.Context(), &reviews); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews})
}

// reviewableItem is a delivered listing still awaiting a review.
type reviewableItem struct {
	Order         primitive.ObjectID  `json:"order"`
	OrderNumber   string              `json:"orderNumber"`
	VendorProduct *primitive.ObjectID `json:"vendorProduct"`
	Product       primitive.ObjectID  `json:"product"`
	DeliveredAt   *time.Time          `json:"deliveredAt,omitempty"`
}

// ReviewableProducts lists the delivered order items the customer has not
// reviewed yet.
func (h *ReviewHandler) ReviewableProducts(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	cursor, err := h.DB.Collection("orders").Find(c.Request.Context(), bson.M{
		"customer": customer.ID,
		"status":   models.OrderDelivered,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	var orders []models.Order
	if err := cursor.All(c.Request.Context(), &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	revCursor, err := h.DB.Collection("vendorproductreviews").Find(c.Request.Context(), bson.M{"customer": customer.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
		return
	}
	var reviews []models.VendorProductReview
	if err := revCursor.All(c.Request.Context(), &reviews); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
		return
	}

	reviewed := make(map[string]bool, len(reviews))
	for _, r := range reviews {
		reviewed[r.Order.Hex()+"/"+r.VendorProduct.Hex()] = true
	}

	items := []reviewableItem{}
	for _, order := range orders {
		for _, item := range order.Items {
			if item.VendorProduct == nil {
				continue
			}
			if reviewed[order.ID.Hex()+"/"+item.VendorProduct.Hex()] {
				continue
			}
			items = append(items, reviewableItem{
				Order:         order.ID,
				OrderNumber:   order.OrderNumber,
				VendorProduct: item.VendorProduct,
				Product:       item.Product,
				DeliveredAt:   order.ActualDelivery,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"count": len(items), "products": items})
}

// loadOwnReview fetches a review and enforces reviewer ownership.
func (h *ReviewHandler) loadOwnReview(c *gin.Context, customerID primitive.ObjectID) (*models.VendorProductReview, bool) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return nil, false
	}

	var review models.VendorProductReview
	err := h.DB.Collection("vendorproductreviews").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&review)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil, false
	}
	if review.Customer != customerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this review"})
		return nil, false
	}
	return &review, true
}

type UpdateReviewRequest struct {
	Rating             *int    `json:"rating" binding:"omitempty,min=1,max=5"`
	Review             *string `json:"review"`
	ProductQuality     *int    `json:"productQuality" binding:"omitempty,min=1,max=5"`
	DeliveryExperience *int    `json:"deliveryExperience" binding:"omitempty,min=1,max=5"`
	ValueForMoney      *int    `json:"valueForMoney" binding:"omitempty,min=1,max=5"`
}

func (h *ReviewHandler) Update(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	review, ok := h.loadOwnReview(c, customer.ID)
	if !ok {
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Rating != nil {
		set["rating"] = *req.Rating
	}
	if req.Review != nil {
		set["review"] = *req.Review
	}
	if req.ProductQuality != nil {
		set["productQuality"] = *req.ProductQuality
	}
	if req.DeliveryExperience != nil {
		set["deliveryExperience"] = *req.DeliveryExperience
	}
	if req.ValueForMoney != nil {
		set["valueForMoney"] = *req.ValueForMoney
	}

	_, err := h.DB.Collection("vendorproductreviews").UpdateOne(c.Request.Context(),
		bson.M{"_id": review.ID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}

	var updated models.VendorProductReview
	_ = h.DB.Collection("vendorproductreviews").FindOne(c.Request.Context(), bson.M{"_id": review.ID}).Decode(&updated)
	c.JSON(http.StatusOK, gin.H{"message": "Review updated", "review": updated})
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	review, ok := h.loadOwnReview(c, customer.ID)
	if !ok {
		return
	}

	_, err := h.DB.Collection("vendorproductreviews").DeleteOne(c.Request.Context(), bson.M{"_id": review.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete review"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
