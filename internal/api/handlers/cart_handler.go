package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/internal/api/middleware"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/pricing"
)

type CartHandler struct {
	DB *mongo.Database
}

// CartItemView is a cart line joined to its listing, product and vendor.
type CartItemView struct {
	VendorProduct primitive.ObjectID   `json:"vendorProduct"`
	Product       models.Product       `json:"product"`
	Vendor        models.VendorSummary `json:"vendor"`
	Quantity      int                  `json:"quantity"`
	UnitPrice     float64              `json:"unitPrice"`
	TotalPrice    float64              `json:"totalPrice"`
	InStock       bool                 `json:"inStock"`
}

// CartView is the populated cart response.
type CartView struct {
	ID          primitive.ObjectID `json:"_id"`
	Customer    primitive.ObjectID `json:"customer"`
	Items       []CartItemView     `json:"items"`
	Subtotal    float64            `json:"subtotal"`
	LastUpdated time.Time          `json:"lastUpdated"`
}

// loadOrCreateCart returns the customer's cart, creating an empty one on
// first use.
func (h *CartHandler) loadOrCreateCart(c *gin.Context, customerID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := h.DB.Collection("carts").FindOne(c.Request.Context(), bson.M{"customer": customerID}).Decode(&cart)
	if err == nil {
		return &cart, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := time.Now()
	cart = models.Cart{
		Customer:    customerID,
		Items:       []models.CartItem{},
		LastUpdated: now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	res, err := h.DB.Collection("carts").InsertOne(c.Request.Context(), cart)
	if err != nil {
		return nil, err
	}
	cart.ID = res.InsertedID.(primitive.ObjectID)
	return &cart, nil
}

// cartView populates a cart's items with product and vendor data.
func (h *CartHandler) cartView(c *gin.Context, cart *models.Cart) (*CartView, error) {
	listingIDs := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, item := range cart.Items {
		listingIDs = append(listingIDs, item.VendorProduct)
	}

	listings := make(map[primitive.ObjectID]models.VendorProduct, len(listingIDs))
	if len(listingIDs) > 0 {
		cursor, err := h.DB.Collection("vendorproducts").Find(c.Request.Context(), bson.M{"_id": bson.M{"$in": listingIDs}})
		if err != nil {
			return nil, err
		}
		var rows []models.VendorProduct
		if err := cursor.All(c.Request.Context(), &rows); err != nil {
			return nil, err
		}
		for _, l := range rows {
			listings[l.ID] = l
		}
	}

	productIDs := make([]primitive.ObjectID, 0, len(listings))
	vendorIDs := make([]primitive.ObjectID, 0, len(listings))
	for _, l := range listings {
		productIDs = append(productIDs, l.Product)
		vendorIDs = append(vendorIDs, l.Vendor)
	}
	products, err := productsByID(c, h.DB, productIDs)
	if err != nil {
		return nil, err
	}
	vendors, err := vendorSummariesByID(c, h.DB, vendorIDs)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		ID:          cart.ID,
		Customer:    cart.Customer,
		Items:       make([]CartItemView, 0, len(cart.Items)),
		LastUpdated: cart.LastUpdated,
	}
	var subtotal float64
	for _, item := range cart.Items {
		listing, ok := listings[item.VendorProduct]
		if !ok {
			// Listing deleted since it was added; skip the stale line.
			continue
		}
		product, ok := products[listing.Product]
		if !ok {
			continue
		}
		quote := pricing.QuoteListing(product.Price, listingDiscount(listing))
		total := pricing.Round2(quote.FinalPrice * float64(item.Quantity))
		subtotal += total
		view.Items = append(view.Items, CartItemView{
			VendorProduct: item.VendorProduct,
			Product:       product,
			Vendor:        vendors[listing.Vendor],
			Quantity:      item.Quantity,
			UnitPrice:     quote.FinalPrice,
			TotalPrice:    total,
			InStock:       listing.InStock,
		})
	}
	view.Subtotal = pricing.Round2(subtotal)
	return view, nil
}

func (h *CartHandler) respondWithCart(c *gin.Context, cart *models.Cart, message string) {
	view, err := h.cartView(c, cart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	resp := gin.H{"cart": view}
	if message != "" {
		resp["message"] = message
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CartHandler) Get(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	cart, err := h.loadOrCreateCart(c, customer.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}
	h.respondWithCart(c, cart, "")
}

type AddCartItemRequest struct {
	VendorProduct string `json:"vendorProduct" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
}

func (h *CartHandler) AddItem(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	listingID, err := primitive.ObjectIDFromHex(req.VendorProduct)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendorProduct id"})
		return
	}

	var listing models.VendorProduct
	err = h.DB.Collection("vendorproducts").FindOne(c.Request.Context(), bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}
	if !listing.InStock {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product is out of stock"})
		return
	}

	cart, err := h.loadOrCreateCart(c, customer.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	// Merge quantity when the listing is already in the cart.
	merged := false
	for i := range cart.Items {
		if cart.Items[i].VendorProduct == listingID {
			cart.Items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{VendorProduct: listingID, Quantity: req.Quantity})
	}

	now := time.Now()
	cart.LastUpdated = now
	_, err = h.DB.Collection("carts").UpdateOne(c.Request.Context(),
		bson.M{"_id": cart.ID},
		bson.M{"$set": bson.M{"items": cart.Items, "lastUpdated": now, "updatedAt": now}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	h.respondWithCart(c, cart, "Item added to cart")
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	listingID, ok := objectIDParam(c, "vendorProductId")
	if !ok {
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cart, err := h.loadOrCreateCart(c, customer.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].VendorProduct == listingID {
			cart.Items[i].Quantity = req.Quantity
			found = true
			break
		}
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	now := time.Now()
	cart.LastUpdated = now
	_, err = h.DB.Collection("carts").UpdateOne(c.Request.Context(),
		bson.M{"_id": cart.ID},
		bson.M{"$set": bson.M{"items": cart.Items, "lastUpdated": now, "updatedAt": now}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	h.respondWithCart(c, cart, "Cart updated")
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	listingID, ok := objectIDParam(c, "vendorProductId")
	if !ok {
		return
	}

	cart, err := h.loadOrCreateCart(c, customer.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	items := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.VendorProduct == listingID {
			removed = true
			continue
		}
		items = append(items, item)
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}
	cart.Items = items

	now := time.Now()
	cart.LastUpdated = now
	_, err = h.DB.Collection("carts").UpdateOne(c.Request.Context(),
		bson.M{"_id": cart.ID},
		bson.M{"$set": bson.M{"items": cart.Items, "lastUpdated": now, "updatedAt": now}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	h.respondWithCart(c, cart, "Item removed from cart")
}

func (h *CartHandler) Clear(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	cart, err := h.loadOrCreateCart(c, customer.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	now := time.Now()
	cart.Items = []models.CartItem{}
	cart.LastUpdated = now
	_, err = h.DB.Collection("carts").UpdateOne(c.Request.Context(),
		bson.M{"_id": cart.ID},
		bson.M{"$set": bson.M{"items": cart.Items, "lastUpdated": now, "updatedAt": now}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	h.respondWithCart(c, cart, "Cart cleared")
}
