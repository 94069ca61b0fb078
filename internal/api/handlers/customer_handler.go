package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/internal/api/middleware"
	"buy-bye-api-server/internal/auth"
	"buy-bye-api-server/internal/geocode"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/notify"
)

type CustomerHandler struct {
	DB        *mongo.Database
	Mailer    *notify.Mailer
	Geocoder  *geocode.Client
	JWTSecret []byte
}

type RegisterCustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (h *CustomerHandler) Register(c *gin.Context) {
	var req RegisterCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.DB.Collection("customers").CountDocuments(c.Request.Context(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing accounts"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password"})
		return
	}

	token, err := auth.NewVerificationToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification token"})
		return
	}
	expires := time.Now().Add(auth.EmailTokenTTL)

	now := time.Now()
	customer := models.Customer{
		Name:                     req.Name,
		Email:                    req.Email,
		Password:                 hashed,
		Phone:                    req.Phone,
		EmailVerificationToken:   token,
		EmailVerificationExpires: &expires,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	if req.Address != "" && h.Geocoder != nil {
		point, err := h.Geocoder.GeocodeAddress(c.Request.Context(), req.Address)
		if err != nil {
			logrus.Warnf("could not geocode address for %s: %v", req.Email, err)
		} else {
			customer.Location = &point
		}
	}

	res, err := h.DB.Collection("customers").InsertOne(c.Request.Context(), customer)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	// Registration succeeds even when the email cannot be sent.
	if h.Mailer != nil {
		if err := h.Mailer.SendVerificationEmail(req.Email, token, req.Name, "customers"); err != nil {
			logrus.Errorf("failed to send verification email to %s: %v", req.Email, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email to verify your account.",
		"id":      res.InsertedID,
	})
}

func (h *CustomerHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")

	var customer models.Customer
	err := h.DB.Collection("customers").FindOne(c.Request.Context(), bson.M{
		"emailVerificationToken":   token,
		"emailVerificationExpires": bson.M{"$gt": time.Now()},
	}).Decode(&customer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification token"})
		return
	}

	_, err = h.DB.Collection("customers").UpdateOne(c.Request.Context(),
		bson.M{"_id": customer.ID},
		bson.M{
			"$set": bson.M{
				"isEmailVerified": true,
				"isActive":        true,
				"updatedAt":       time.Now(),
			},
			"$unset": bson.M{
				"emailVerificationToken":   "",
				"emailVerificationExpires": "",
			},
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully. You can now log in."})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *CustomerHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var customer models.Customer
	err := h.DB.Collection("customers").FindOne(c.Request.Context(), bson.M{"email": req.Email}).Decode(&customer)
	if err != nil || !auth.CheckPasswordHash(req.Password, customer.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !customer.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"error":           "Account is not active. Please verify your email.",
			"isEmailVerified": customer.IsEmailVerified,
		})
		return
	}

	token, err := auth.GenerateToken(customer.ID.Hex(), h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	now := time.Now()
	_, _ = h.DB.Collection("customers").UpdateOne(c.Request.Context(),
		bson.M{"_id": customer.ID},
		bson.M{"$set": bson.M{"lastLogin": now}})

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"token":    token,
		"customer": customer,
	})
}

func (h *CustomerHandler) GetProfile(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

type UpdateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone"`
}

func (h *CustomerHandler) UpdateProfile(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if req.Email != "" && req.Email != customer.Email {
		count, err := h.DB.Collection("customers").CountDocuments(c.Request.Context(), bson.M{"email": req.Email})
		if err != nil || count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Email is already in use"})
			return
		}
		// Changing the email requires re-verification.
		token, err := auth.NewVerificationToken()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification token"})
			return
		}
		expires := time.Now().Add(auth.EmailTokenTTL)
		set["email"] = req.Email
		set["isEmailVerified"] = false
		set["emailVerificationToken"] = token
		set["emailVerificationExpires"] = expires

		if h.Mailer != nil {
			if err := h.Mailer.SendVerificationEmail(req.Email, token, customer.Name, "customers"); err != nil {
				logrus.Errorf("failed to send verification email to %s: %v", req.Email, err)
			}
		}
	}

	_, err := h.DB.Collection("customers").UpdateOne(c.Request.Context(), bson.M{"_id": customer.ID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	var updated models.Customer
	_ = h.DB.Collection("customers").FindOne(c.Request.Context(), bson.M{"_id": customer.ID}).Decode(&updated)
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "customer": updated})
}

type UpdateLocationRequest struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// UpdateLocation sets the customer's stored location either from a geocoded
// address or from raw coordinates (reverse-geocoded for display).
func (h *CustomerHandler) UpdateLocation(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var point models.GeoPoint
	switch {
	case req.Address != "":
		if h.Geocoder == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Geocoding is not configured"})
			return
		}
		p, err := h.Geocoder.GeocodeAddress(c.Request.Context(), req.Address)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not resolve the given address"})
			return
		}
		point = p
	case req.Lat != nil && req.Lng != nil:
		point = models.NewGeoPoint(*req.Lng, *req.Lat)
		if h.Geocoder != nil {
			if addr, err := h.Geocoder.ReverseGeocode(c.Request.Context(), *req.Lat, *req.Lng); err == nil {
				point.FormattedAddress = addr
			}
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide an address or lat/lng"})
		return
	}

	_, err := h.DB.Collection("customers").UpdateOne(c.Request.Context(),
		bson.M{"_id": customer.ID},
		bson.M{"$set": bson.M{"location": point, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Location updated", "location": point})
}

type PushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h *CustomerHandler) SavePushToken(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	var req PushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.DB.Collection("customers").UpdateOne(c.Request.Context(),
		bson.M{"_id": customer.ID},
		bson.M{"$set": bson.M{"pushToken": req.Token, "updatedAt": time.Now()}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save push token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Push token saved"})
}
