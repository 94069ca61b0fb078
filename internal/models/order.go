package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order and payment lifecycles.
const (
	OrderPending        = "pending"
	OrderProcessing     = "processing"
	OrderOutForDelivery = "out_for_delivery"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"

	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentOnline         = "online"
	PaymentWallet         = "wallet"

	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderPending, OrderProcessing, OrderOutForDelivery, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type OrderItem struct {
	Product       primitive.ObjectID  `bson:"product" json:"product"`
	Vendor        primitive.ObjectID  `bson:"vendor" json:"vendor"`
	VendorProduct *primitive.ObjectID `bson:"vendorProduct,omitempty" json:"vendorProduct,omitempty"`
	Quantity      int                 `bson:"quantity" json:"quantity"`
	// Unit price after the listing discount was applied.
	Price         float64 `bson:"price" json:"price"`
	DiscountType  string  `bson:"discountType,omitempty" json:"discountType,omitempty"`
	DiscountValue float64 `bson:"discountValue" json:"discountValue"`
	TotalPrice    float64 `bson:"totalPrice" json:"totalPrice"`
}

type OrderStatusChange struct {
	Status    string    `bson:"status" json:"status"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
}

type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	OrderNumber     string              `bson:"orderNumber" json:"orderNumber"`
	Customer        primitive.ObjectID  `bson:"customer" json:"customer"`
	Items           []OrderItem         `bson:"items" json:"items"`
	DeliveryAddress GeoPoint            `bson:"deliveryAddress" json:"deliveryAddress"`
	ContactPhone    string              `bson:"contactPhone" json:"contactPhone"`
	Status          string              `bson:"status" json:"status"`
	PaymentMethod   string              `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus   string              `bson:"paymentStatus" json:"paymentStatus"`
	StatusHistory   []OrderStatusChange `bson:"statusHistory" json:"statusHistory"`
	Subtotal        float64             `bson:"subtotal" json:"subtotal"`
	DeliveryFee     float64             `bson:"deliveryFee" json:"deliveryFee"`
	OrderDiscount   float64             `bson:"orderDiscount" json:"orderDiscount"`
	Total           float64             `bson:"total" json:"total"`
	CustomerNotes   string              `bson:"customerNotes,omitempty" json:"customerNotes,omitempty"`

	EstimatedDelivery *time.Time `bson:"estimatedDelivery,omitempty" json:"estimatedDelivery,omitempty"`
	ActualDelivery    *time.Time `bson:"actualDelivery,omitempty" json:"actualDelivery,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AppendStatus records a lifecycle transition on the order.
func (o *Order) AppendStatus(status, note string) {
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, OrderStatusChange{
		Status:    status,
		Timestamp: time.Now(),
		Note:      note,
	})
}
