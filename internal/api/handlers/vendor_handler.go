package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/internal/api/middleware"
	"buy-bye-api-server/internal/auth"
	"buy-bye-api-server/internal/geo"
	"buy-bye-api-server/internal/geocode"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/notify"
	"buy-bye-api-server/internal/pricing"
)

type VendorHandler struct {
	DB        *mongo.Database
	Mailer    *notify.Mailer
	SMS       *notify.SMSSender
	Geocoder  *geocode.Client
	JWTSecret []byte
}

type RegisterVendorRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	Phone       string `json:"phone"`
	Address     string `json:"address" binding:"required"`
	VendorType  string `json:"vendorType"`
	Description string `json:"description"`
}

// Register creates a vendor account. The storefront address is mandatory
// since every discovery query is geospatial.
func (h *VendorHandler) Register(c *gin.Context) {
	var req RegisterVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	count, err := h.DB.Collection("vendors").CountDocuments(c.Request.Context(), bson.M{"email": req.Email})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check existing accounts"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
		return
	}

	if h.Geocoder == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Geocoding is not configured"})
		return
	}
	location, err := h.Geocoder.GeocodeAddress(c.Request.Context(), req.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not resolve the shop address"})
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
	vendor := models.Vendor{
		Name:                     req.Name,
		Email:                    req.Email,
		Password:                 hashed,
		Phone:                    req.Phone,
		VendorType:               req.VendorType,
		Description:              req.Description,
		EmailVerificationToken:   token,
		EmailVerificationExpires: &expires,
		Location:                 location,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	res, err := h.DB.Collection("vendors").InsertOne(c.Request.Context(), vendor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
		return
	}

	if h.Mailer != nil {
		if err := h.Mailer.SendVerificationEmail(req.Email, token, req.Name, "vendors"); err != nil {
			logrus.Errorf("failed to send verification email to %s: %v", req.Email, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful. Please check your email to verify your account.",
		"id":      res.InsertedID,
	})
}

func (h *VendorHandler) VerifyEmail(c *gin.Context) {
	token := c.Param("token")

	var vendor models.Vendor
	err := h.DB.Collection("vendors").FindOne(c.Request.Context(), bson.M{
		"emailVerificationToken":   token,
		"emailVerificationExpires": bson.M{"$gt": time.Now()},
	}).Decode(&vendor)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification token"})
		return
	}

	_, err = h.DB.Collection("vendors").UpdateOne(c.Request.Context(),
		bson.M{"_id": vendor.ID},
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

type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *VendorHandler) ResendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var vendor models.Vendor
	err := h.DB.Collection("vendors").FindOne(c.Request.Context(), bson.M{"email": req.Email}).Decode(&vendor)
	if err != nil {
		// Do not reveal whether the account exists.
		c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a verification email has been sent."})
		return
	}
	if vendor.IsEmailVerified {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is already verified"})
		return
	}

	token, err := auth.NewVerificationToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification token"})
		return
	}
	expires := time.Now().Add(auth.EmailTokenTTL)

	_, err = h.DB.Collection("vendors").UpdateOne(c.Request.Context(),
		bson.M{"_id": vendor.ID},
		bson.M{"$set": bson.M{
			"emailVerificationToken":   token,
			"emailVerificationExpires": expires,
			"updatedAt":                time.Now(),
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh verification token"})
		return
	}

	if h.Mailer != nil {
		if err := h.Mailer.SendVerificationEmail(vendor.Email, token, vendor.Name, "vendors"); err != nil {
			logrus.Errorf("failed to send verification email to %s: %v", vendor.Email, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a verification email has been sent."})
}

// RequestPhoneCode sends a fresh OTP to the authenticated vendor's phone.
func (h *VendorHandler) RequestPhoneCode(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)
	if vendor.Phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No phone number on the account"})
		return
	}

	code, err := auth.NewPhoneVerificationCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create verification code"})
		return
	}
	expires := time.Now().Add(auth.PhoneCodeTTL)

	_, err = h.DB.Collection("vendors").UpdateOne(c.Request.Context(),
		bson.M{"_id": vendor.ID},
		bson.M{"$set": bson.M{
			"phoneVerificationCode":    code,
			"phoneVerificationExpires": expires,
			"updatedAt":                time.Now(),
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store verification code"})
		return
	}

	if h.SMS != nil {
		if err := h.SMS.SendVerificationCode(vendor.Phone, code); err != nil {
			logrus.Errorf("failed to send verification SMS to vendor %s: %v", vendor.ID.Hex(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send verification code"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Verification code sent"})
}

type VerifyPhoneRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

func (h *VendorHandler) VerifyPhone(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)

	var req VerifyPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if vendor.PhoneVerificationCode == "" || vendor.PhoneVerificationCode != req.Code ||
		vendor.PhoneVerificationExpires == nil || vendor.PhoneVerificationExpires.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code"})
		return
	}

	_, err := h.DB.Collection("vendors").UpdateOne(c.Request.Context(),
		bson.M{"_id": vendor.ID},
		bson.M{
			"$set": bson.M{
				"isPhoneVerified": true,
				"isActive":        true,
				"updatedAt":       time.Now(),
			},
			"$unset": bson.M{
				"phoneVerificationCode":    "",
				"phoneVerificationExpires": "",
			},
		})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify phone"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Phone number verified successfully"})
}

func (h *VendorHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var vendor models.Vendor
	err := h.DB.Collection("vendors").FindOne(c.Request.Context(), bson.M{"email": req.Email}).Decode(&vendor)
	if err != nil || !auth.CheckPasswordHash(req.Password, vendor.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if !vendor.IsActive {
		c.JSON(http.StatusForbidden, gin.H{
			"error":           "Account is not active. Please verify your email or phone.",
			"isEmailVerified": vendor.IsEmailVerified,
			"isPhoneVerified": vendor.IsPhoneVerified,
		})
		return
	}

	token, err := auth.GenerateToken(vendor.ID.Hex(), h.JWTSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	now := time.Now()
	_, _ = h.DB.Collection("vendors").UpdateOne(c.Request.Context(),
		bson.M{"_id": vendor.ID},
		bson.M{"$set": bson.M{"lastLogin": now}})

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"vendor":  vendor,
	})
}

func (h *VendorHandler) GetProfile(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)
	c.JSON(http.StatusOK, gin.H{"vendor": vendor})
}

type UpdateVendorRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	VendorType  string `json:"vendorType"`
	Description string `json:"description"`
}

func (h *VendorHandler) UpdateProfile(c *gin.Context) {
	vendor := middleware.VendorFromContext(c)

	var req UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		set["name"] = req.Name
	}
	if req.Phone != "" && req.Phone != vendor.Phone {
		set["phone"] = req.Phone
		set["isPhoneVerified"] = false
	}
	if req.VendorType != "" {
		set["vendorType"] = req.VendorType
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Address != "" {
		if h.Geocoder == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Geocoding is not configured"})
			return
		}
		location, err := h.Geocoder.GeocodeAddress(c.Request.Context(), req.Address)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Could not resolve the shop address"})
			return
		}
		set["location"] = location
	}

	_, err := h.DB.Collection("vendors").UpdateOne(c.Request.Context(), bson.M{"_id": vendor.ID}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	var updated models.Vendor
	_ = h.DB.Collection("vendors").FindOne(c.Request.Context(), bson.M{"_id": vendor.ID}).Decode(&updated)
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "vendor": updated})
}

// List returns all active vendors.
func (h *VendorHandler) List(c *gin.Context) {
	cursor, err := h.DB.Collection("vendors").Find(c.Request.Context(), bson.M{"isActive": true})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vendors"})
		return
	}
	var vendors []models.Vendor
	if err := cursor.All(c.Request.Context(), &vendors); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list vendors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(vendors), "vendors": vendors})
}

// GetByID returns one vendor, with a distance annotation when the caller
// supplies lat/lng.
func (h *VendorHandler) GetByID(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var vendor models.Vendor
	err := h.DB.Collection("vendors").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&vendor)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	resp := gin.H{"vendor": vendor}
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat == nil && errLng == nil {
			resp["distance"] = pricing.Round2(vendorDistance(geo.Point{Lng: lng, Lat: lat}, vendor))
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Nearby is the public 1 km vendor search; lat/lng are required since there
// is no authenticated fallback location.
func (h *VendorHandler) Nearby(c *gin.Context) {
	center, ok := centerFromQuery(c, nil)
	if !ok {
		return
	}

	vendors, err := findNearbyVendors(c, h.DB, center, geo.DefaultRadiusKm, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search vendors"})
		return
	}

	results := make([]VendorResult, 0, len(vendors))
	for _, v := range vendors {
		results = append(results, VendorResult{Vendor: v, Distance: pricing.Round2(vendorDistance(center, v))})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })

	c.JSON(http.StatusOK, gin.H{"count": len(results), "vendors": results})
}
