package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"buy-bye-api-server/internal/api/middleware"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/notify"
	"buy-bye-api-server/internal/pricing"
	"buy-bye-api-server/internal/socket"
)

type VendorOrderHandler struct {
	DB     *mongo.Database
	Pusher *notify.Pusher
	Hub    *socket.Hub
}

// List returns the orders containing at least one of the vendor's items,
// newest first, with optional status filter and pagination.
func (h *VendorOrderHandler) List(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)

	filter := bson.M{"items.vendor": vendor.ID}
	if status := c.Query("status"); status != "" {
		if !models.ValidOrderStatus(status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
			return
		}
		filter["status"] = status
	}

	page, limit, skip := paginationParams(c, 10)

	total, err := h.DB.Collection("orders").CountDocuments(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)
	cursor, err := h.DB.Collection("orders").Find(c.Request.Context(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}
	var orders []models.Order
	if err := cursor.All(c.Request.Context(), &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// Stats aggregates the vendor's order counts and revenue from its own
// items.
func (h *VendorOrderHandler) Stats(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)

	pipeline := []bson.M{
		{"$match": bson.M{"items.vendor": vendor.ID}},
		{"$unwind": "$items"},
		{"$match": bson.M{"items.vendor": vendor.ID}},
		{"$group": bson.M{
			"_id":      "$status",
			"orders":   bson.M{"$addToSet": "$_id"},
			"revenue":  bson.M{"$sum": "$items.totalPrice"},
			"quantity": bson.M{"$sum": "$items.quantity"},
		}},
	}
	cursor, err := h.DB.Collection("orders").Aggregate(c.Request.Context(), pipeline)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}
	var rows []struct {
		Status   string               `bson:"_id"`
		Orders   []primitive.ObjectID `bson:"orders"`
		Revenue  float64              `bson:"revenue"`
		Quantity int                  `bson:"quantity"`
	}
	if err := cursor.All(c.Request.Context(), &rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
		return
	}

	byStatus := gin.H{}
	totalOrders := 0
	var totalRevenue float64
	for _, row := range rows {
		byStatus[row.Status] = gin.H{
			"orders":   len(row.Orders),
			"revenue":  pricing.Round2(row.Revenue),
			"quantity": row.Quantity,
		}
		totalOrders += len(row.Orders)
		if row.Status == models.OrderDelivered {
			totalRevenue += row.Revenue
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"totalOrders":      totalOrders,
		"deliveredRevenue": pricing.Round2(totalRevenue),
		"byStatus":         byStatus,
	})
}

// loadVendorOrder fetches the order and verifies the vendor participates in
// it.
func (h *VendorOrderHandler) loadVendorOrder(c *gin.Context, vendorID primitive.ObjectID) (*models.Order, bool) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return nil, false
	}

	var order models.Order
	err := h.DB.Collection("orders").FindOne(c.Request.Context(),
		bson.M{"_id": id, "items.vendor": vendorID}).Decode(&order)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil, false
	}
	return &order, true
}

func (h *VendorOrderHandler) GetByID(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)
	order, ok := h.loadVendorOrder(c, vendor.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note"`
}

// UpdateStatus advances the order lifecycle. The customer is notified over
// FCM and the vendor dashboards over the websocket feed; both channels are
// best effort.
func (h *VendorOrderHandler) UpdateStatus(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)
	order, ok := h.loadVendorOrder(c, vendor.ID)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}
	if order.Status == models.OrderCancelled || order.Status == models.OrderDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already closed"})
		return
	}

	order.AppendStatus(req.Status, req.Note)

	set := bson.M{
		"status":        order.Status,
		"statusHistory": order.StatusHistory,
		"updatedAt":     time.Now(),
	}
	if req.Status == models.OrderDelivered {
		now := time.Now()
		order.ActualDelivery = &now
		set["actualDelivery"] = now
		set["paymentStatus"] = models.PaymentStatusCompleted
	}

	_, err := h.DB.Collection("orders").UpdateOne(c.Request.Context(),
		bson.M{"_id": order.ID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	h.pushStatusToCustomer(c, order, req.Status)

	if h.Hub != nil {
		if err := h.Hub.Send(vendor.ID.Hex(), gin.H{
			"event":       "order:status",
			"orderId":     order.ID.Hex(),
			"orderNumber": order.OrderNumber,
			"status":      req.Status,
		}); err != nil {
			logrus.Debugf("vendor %s not reachable over websocket: %v", vendor.ID.Hex(), err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

func (h *VendorOrderHandler) pushStatusToCustomer(c *gin.Context, order *models.Order, status string) {
	if h.Pusher == nil {
		return
	}
	var customer models.Customer
	err := h.DB.Collection("customers").FindOne(c.Request.Context(), bson.M{"_id": order.Customer}).Decode(&customer)
	if err != nil || customer.PushToken == "" {
		return
	}
	err = h.Pusher.Send(c.Request.Context(), customer.PushToken,
		"Order update",
		fmt.Sprintf("Your order %s is now %s", order.OrderNumber, status),
		map[string]string{
			"orderId": order.ID.Hex(),
			"status":  status,
		})
	if err != nil {
		logrus.Errorf("failed to push order update to customer %s: %v", order.Customer.Hex(), err)
	}
}
