package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/s3"
)

type ProductHandler struct {
	DB       *mongo.Database
	Uploader *s3.Uploader
}

type ProductRequest struct {
	Title       string       `json:"title" binding:"required"`
	Price       models.Price `json:"price" binding:"required"`
	ImageURL    string       `json:"imageUrl"`
	Description string       `json:"description"`
	Category    string       `json:"category" binding:"required"`
	SubCategory string       `json:"subCategory" binding:"required"`
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return
	}
	subCategoryID, err := primitive.ObjectIDFromHex(req.SubCategory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subCategory id"})
		return
	}

	count, err := h.DB.Collection("subcategories").CountDocuments(c.Request.Context(), bson.M{
		"_id":      subCategoryID,
		"category": categoryID,
	})
	if err != nil || count == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Sub-category does not belong to the given category"})
		return
	}

	product := models.Product{
		Title:       req.Title,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		Category:    categoryID,
		SubCategory: subCategoryID,
	}
	res, err := h.DB.Collection("products").InsertOne(c.Request.Context(), product)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "id": res.InsertedID})
}

// productViews joins category and sub-category names onto products, the
// moral equivalent of a double populate.
func (h *ProductHandler) productViews(c *gin.Context, products []models.Product) ([]models.ProductView, error) {
	categoryIDs := make([]primitive.ObjectID, 0, len(products))
	subCategoryIDs := make([]primitive.ObjectID, 0, len(products))
	for _, p := range products {
		categoryIDs = append(categoryIDs, p.Category)
		subCategoryIDs = append(subCategoryIDs, p.SubCategory)
	}

	categoryNames := make(map[primitive.ObjectID]string)
	if len(categoryIDs) > 0 {
		cursor, err := h.DB.Collection("categories").Find(c.Request.Context(), bson.M{"_id": bson.M{"$in": categoryIDs}})
		if err != nil {
			return nil, err
		}
		var categories []models.Category
		if err := cursor.All(c.Request.Context(), &categories); err != nil {
			return nil, err
		}
		for _, cat := range categories {
			categoryNames[cat.ID] = cat.Name
		}
	}

	subCategoryNames := make(map[primitive.ObjectID]string)
	if len(subCategoryIDs) > 0 {
		cursor, err := h.DB.Collection("subcategories").Find(c.Request.Context(), bson.M{"_id": bson.M{"$in": subCategoryIDs}})
		if err != nil {
			return nil, err
		}
		var subCategories []models.SubCategory
		if err := cursor.All(c.Request.Context(), &subCategories); err != nil {
			return nil, err
		}
		for _, sub := range subCategories {
			subCategoryNames[sub.ID] = sub.Name
		}
	}

	views := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, models.ProductView{
			ID:          p.ID,
			Title:       p.Title,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Description: p.Description,
			Category:    models.NamedRef{ID: p.Category, Name: categoryNames[p.Category]},
			SubCategory: models.NamedRef{ID: p.SubCategory, Name: subCategoryNames[p.SubCategory]},
		})
	}
	return views, nil
}

func (h *ProductHandler) listByFilter(c *gin.Context, filter bson.M) {
	cursor, err := h.DB.Collection("products").Find(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	var products []models.Product
	if err := cursor.All(c.Request.Context(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	views, err := h.productViews(c, products)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(views), "products": views})
}

func (h *ProductHandler) List(c *gin.Context) {
	h.listByFilter(c, bson.M{})
}

func (h *ProductHandler) ByCategory(c *gin.Context) {
	categoryID, ok := objectIDParam(c, "categoryId")
	if !ok {
		return
	}
	h.listByFilter(c, bson.M{"category": categoryID})
}

func (h *ProductHandler) BySubCategory(c *gin.Context) {
	subCategoryID, ok := objectIDParam(c, "subCategoryId")
	if !ok {
		return
	}
	h.listByFilter(c, bson.M{"subCategory": subCategoryID})
}

// Search matches a keyword against product titles, case-insensitively.
func (h *ProductHandler) Search(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("keyword"))
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword is required"})
		return
	}
	h.listByFilter(c, bson.M{"title": primitive.Regex{Pattern: keyword, Options: "i"}})
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var product models.Product
	err := h.DB.Collection("products").FindOne(c.Request.Context(), bson.M{"_id": id}).Decode(&product)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	views, err := h.productViews(c, []models.Product{product})
	if err != nil || len(views) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": views[0]})
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return
	}
	subCategoryID, err := primitive.ObjectIDFromHex(req.SubCategory)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subCategory id"})
		return
	}

	res, err := h.DB.Collection("products").UpdateOne(c.Request.Context(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"title":       req.Title,
			"price":       req.Price,
			"imageUrl":    req.ImageURL,
			"description": req.Description,
			"category":    categoryID,
			"subCategory": subCategoryID,
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	res, err := h.DB.Collection("products").DeleteOne(c.Request.Context(), bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadImage stores a product image on S3 and returns its public URL.
func (h *ProductHandler) UploadImage(c *gin.Context) {
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	ext := filepath.Ext(fileHeader.Filename)
	objectKey := fmt.Sprintf("products/%s%s", uuid.New().String(), ext)
	contentType := fileHeader.Header.Get("Content-Type")

	url, err := h.Uploader.UploadImage(c.Request.Context(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image uploaded", "imageUrl": url})
}
