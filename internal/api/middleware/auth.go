package middleware

import (
	"net/http"
	"strings"

	"buy-bye-api-server/internal/auth"
	"buy-bye-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Context keys set by the authentication middlewares.
const (
	CtxCustomer = "auth_customer"
	CtxVendor   = "auth_vendor"
	CtxUser     = "auth_user"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return "", false
	}
	return tokenString, true
}

func parseSubjectID(c *gin.Context, secret []byte) (primitive.ObjectID, bool) {
	tokenString, ok := bearerToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header with Bearer token is required"})
		return primitive.NilObjectID, false
	}
	claims, err := auth.ParseToken(tokenString, secret)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// AuthenticateCustomer verifies the bearer token, loads the customer document
// and stores it on the request context.
func AuthenticateCustomer(db *mongo.Database, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSubjectID(c, secret)
		if !ok {
			return
		}
		var customer models.Customer
		err := db.Collection("customers").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&customer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Customer account not found"})
			return
		}
		c.Set(CtxCustomer, &customer)
		c.Next()
	}
}

// AuthenticateVendor verifies the bearer token, loads the vendor document and
// stores it on the request context.
func AuthenticateVendor(db *mongo.Database, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSubjectID(c, secret)
		if !ok {
			return
		}
		var vendor models.Vendor
		err := db.Collection("vendors").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&vendor)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Vendor account not found"})
			return
		}
		c.Set(CtxVendor, &vendor)
		c.Next()
	}
}

// AuthenticateAdmin verifies the bearer token against the back-office users
// collection and requires the admin role.
func AuthenticateAdmin(db *mongo.Database, secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseSubjectID(c, secret)
		if !ok {
			return
		}
		var user models.User
		err := db.Collection("users").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&user)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User account not found"})
			return
		}
		if user.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		c.Set(CtxUser, &user)
		c.Next()
	}
}

// CustomerFromContext returns the customer set by AuthenticateCustomer.
func CustomerFromContext(c *gin.Context) *models.Customer {
	v, _ := c.Get(CtxCustomer)
	customer, _ := v.(*models.Customer)
	return customer
}

// VendorFromContext returns the vendor set by AuthenticateVendor.
func VendorFromContext(c *gin.Context) *models.Vendor {
	v, _ := c.Get(CtxVendor)
	vendor, _ := v.(*models.Vendor)
	return vendor
}
