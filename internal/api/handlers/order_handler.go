package handlers

import (
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
	"buy-bye-api-server/internal/pricing"
	"buy-bye-api-server/internal/socket"
)

// EstimatedDeliveryWindow is added to the order creation time.
const EstimatedDeliveryWindow = 24 * time.Hour

type OrderHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type DeliveryAddressRequest struct {
	Lat              *float64 `json:"lat"`
	Lng              *float64 `json:"lng"`
	FormattedAddress string   `json:"formattedAddress"`
}

type CreateOrderRequest struct {
	DeliveryAddress DeliveryAddressRequest `json:"deliveryAddress" binding:"required"`
	ContactPhone    string                 `json:"contactPhone" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"omitempty,oneof=cash_on_delivery online wallet"`
	CustomerNotes   string                 `json:"customerNotes"`
}

func deliveryPointFrom(req DeliveryAddressRequest) (models.GeoPoint, bool) {
	if req.Lat == nil || req.Lng == nil {
		return models.GeoPoint{}, false
	}
	point := models.NewGeoPoint(*req.Lng, *req.Lat)
	point.FormattedAddress = req.FormattedAddress
	return point, true
}

// orderItemsFromCart prices the cart lines into order items. Out-of-stock
// lines abort the order rather than being silently dropped.
func (h *OrderHandler) orderItemsFromCart(c *gin.Context, cart *models.Cart) ([]models.OrderItem, float64, string) {
	if len(cart.Items) == 0 {
		return nil, 0, "Cart is empty"
	}

	listingIDs := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		listingIDs = append(listingIDs, item.VendorProduct)
	}
	cursor, err := h.DB.Collection("vendorproducts").Find(c.Request.Context(), bson.M{"_id": bson.M{"$in": listingIDs}})
	if err != nil {
		return nil, 0, "Failed to load cart items"
	}
	var rows []models.VendorProduct
	if err := cursor.All(c.Request.Context(), &rows); err != nil {
		return nil, 0, "Failed to load cart items"
	}
	listings := make(map[primitive.ObjectID]models.VendorProduct, len(rows))
	for _, l := range rows {
		listings[l.ID] = l
	}

	productIDs := make([]primitive.ObjectID, 0, len(rows))
	for _, l := range rows {
		productIDs = append(productIDs, l.Product)
	}
	products, err := productsByID(c, h.DB, productIDs)
	if err != nil {
		return nil, 0, "Failed to load products"
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	var subtotal float64
	for _, line := range cart.Items {
		listing, ok := listings[line.VendorProduct]
		if !ok {
			return nil, 0, "Cart contains an item that is no longer sold"
		}
		if !listing.InStock {
			return nil, 0, "Cart contains an out-of-stock item"
		}
		product, ok := products[listing.Product]
		if !ok {
			return nil, 0, "Cart contains an item that is no longer sold"
		}

		quote := pricing.QuoteListing(product.Price, listingDiscount(listing))
		total := pricing.Round2(quote.FinalPrice * float64(line.Quantity))
		subtotal += total

		listingID := listing.ID
		items = append(items, models.OrderItem{
			Product:       product.ID,
			Vendor:        listing.Vendor,
			VendorProduct: &listingID,
			Quantity:      line.Quantity,
			Price:         quote.FinalPrice,
			DiscountType:  listing.DiscountType,
			DiscountValue: listing.DiscountValue,
			TotalPrice:    total,
		})
	}
	return items, pricing.Round2(subtotal), ""
}

// notifyVendors pushes a new-order event to every vendor in the order.
func (h *OrderHandler) notifyVendors(order *models.Order) {
	if h.Hub == nil {
		return
	}
	seen := make(map[primitive.ObjectID]bool)
	for _, item := range order.Items {
		if seen[item.Vendor] {
			continue
		}
		seen[item.Vendor] = true
		if err := h.Hub.Send(item.Vendor.Hex(), gin.H{
			"event":       "order:new",
			"orderId":     order.ID.Hex(),
			"orderNumber": order.OrderNumber,
			"status":      order.Status,
		}); err != nil {
			logrus.Debugf("vendor %s not reachable over websocket: %v", item.Vendor.Hex(), err)
		}
	}
}

func (h *OrderHandler) insertOrder(c *gin.Context, customer *models.Customer, req CreateOrderRequest, items []models.OrderItem, subtotal float64) {
	address, ok := deliveryPointFrom(req.DeliveryAddress)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Delivery address coordinates are required"})
		return
	}

	orderNumber, err := nextOrderNumber(c, h.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue order number"})
		return
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentCashOnDelivery
	}

	now := time.Now()
	estimated := now.Add(EstimatedDeliveryWindow)
	order := models.Order{
		OrderNumber:       orderNumber,
		Customer:          customer.ID,
		Items:             items,
		DeliveryAddress:   address,
		ContactPhone:      req.ContactPhone,
		Status:            models.OrderPending,
		PaymentMethod:     paymentMethod,
		PaymentStatus:     models.PaymentStatusPending,
		Subtotal:          subtotal,
		Total:             subtotal,
		CustomerNotes:     req.CustomerNotes,
		EstimatedDelivery: &estimated,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	order.AppendStatus(models.OrderPending, "Order placed")

	res, err := h.DB.Collection("orders").InsertOne(c.Request.Context(), order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	order.ID = res.InsertedID.(primitive.ObjectID)

	h.notifyVendors(&order)

	c.JSON(http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

// CreateFromCart turns the customer's cart into an order and clears the
// cart.
func (h *OrderHandler) CreateFromCart(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var cart models.Cart
	err := h.DB.Collection("carts").FindOne(c.Request.Context(), bson.M{"customer": customer.ID}).Decode(&cart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	items, subtotal, errMsg := h.orderItemsFromCart(c, &cart)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	h.insertOrder(c, customer, req, items, subtotal)
	if c.Writer.Status() != http.StatusCreated {
		return
	}

	now := time.Now()
	_, err = h.DB.Collection("carts").UpdateOne(c.Request.Context(),
		bson.M{"_id": cart.ID},
		bson.M{"$set": bson.M{"items": []models.CartItem{}, "lastUpdated": now, "updatedAt": now}})
	if err != nil {
		logrus.Errorf("failed to clear cart %s after order: %v", cart.ID.Hex(), err)
	}
}

type DirectOrderItemRequest struct {
	VendorProduct string `json:"vendorProduct" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
}

type DirectOrderRequest struct {
	Items           []DirectOrderItemRequest `json:"items" binding:"required,min=1,dive"`
	DeliveryAddress DeliveryAddressRequest   `json:"deliveryAddress" binding:"required"`
	ContactPhone    string                   `json:"contactPhone" binding:"required"`
	PaymentMethod   string                   `json:"paymentMethod" binding:"omitempty,oneof=cash_on_delivery online wallet"`
	CustomerNotes   string                   `json:"customerNotes"`
}

// Create places an order directly from listing ids, bypassing the cart.
func (h *OrderHandler) Create(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	var req DirectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart := models.Cart{Items: make([]models.CartItem, 0, len(req.Items))}
	for _, item := range req.Items {
		listingID, err := primitive.ObjectIDFromHex(item.VendorProduct)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendorProduct id"})
			return
		}
		cart.Items = append(cart.Items, models.CartItem{VendorProduct: listingID, Quantity: item.Quantity})
	}

	items, subtotal, errMsg := h.orderItemsFromCart(c, &cart)
	if errMsg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMsg})
		return
	}

	h.insertOrder(c, customer, CreateOrderRequest{
		DeliveryAddress: req.DeliveryAddress,
		ContactPhone:    req.ContactPhone,
		PaymentMethod:   req.PaymentMethod,
		CustomerNotes:   req.CustomerNotes,
	}, items, subtotal)
}

// List returns the customer's orders, newest first, with an optional status
// filter and pagination.
func (h *OrderHandler) List(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	filter := bson.M{"customer": customer.ID}
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

// loadOwnOrder fetches the order and enforces customer ownership.
func (h *OrderHandler) loadOwnOrder(c *gin.Context, customerID primitive.ObjectID) (*models.Order, bool) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return nil, false
	}

	var order models.Order
	err := h.DB.Collection("orders").FindOne(c.Request.Context(), bson.M{"_id": id, "customer": customerID}).Decode(&order)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return nil, false
	}
	return &order, true
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	order, ok := h.loadOwnOrder(c, customer.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

// Cancel is only allowed while the order is pending or processing.
func (h *OrderHandler) Cancel(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	order, ok := h.loadOwnOrder(c, customer.ID)
	if !ok {
		return
	}

	var req CancelOrderRequest
	_ = c.ShouldBindJSON(&req)

	if order.Status != models.OrderPending && order.Status != models.OrderProcessing {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order can no longer be cancelled"})
		return
	}

	note := "Cancelled by customer"
	if req.Reason != "" {
		note = "Cancelled by customer: " + req.Reason
	}
	order.AppendStatus(models.OrderCancelled, note)

	_, err := h.DB.Collection("orders").UpdateOne(c.Request.Context(),
		bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{
			"status":        order.Status,
			"statusHistory": order.StatusHistory,
			"updatedAt":     time.Now(),
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel order"})
		return
	}

	h.notifyVendors(order)

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled", "order": order})
}

// Tracking exposes the delivery-facing slice of an order.
func (h *OrderHandler) Tracking(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	order, ok := h.loadOwnOrder(c, customer.ID)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orderNumber":       order.OrderNumber,
		"status":            order.Status,
		"statusHistory":     order.StatusHistory,
		"estimatedDelivery": order.EstimatedDelivery,
		"actualDelivery":    order.ActualDelivery,
	})
}
