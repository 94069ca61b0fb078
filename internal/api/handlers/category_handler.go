package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/internal/models"
)

type CategoryHandler struct {
	DB *mongo.Database
}

type CategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.DB.Collection("categories").InsertOne(c.Request.Context(), models.Category{Name: req.Name})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "id": res.InsertedID})
}

func (h *CategoryHandler) List(c *gin.Context) {
	cursor, err := h.DB.Collection("categories").Find(c.Request.Context(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	var categories []models.Category
	if err := cursor.All(c.Request.Context(), &categories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.DB.Collection("categories").UpdateOne(c.Request.Context(),
		bson.M{"_id": id}, bson.M{"$set": bson.M{"name": req.Name}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	res, err := h.DB.Collection("categories").DeleteOne(c.Request.Context(), bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

type SubCategoryHandler struct {
	DB *mongo.Database
}

type SubCategoryRequest struct {
	Name       string `json:"name" binding:"required"`
	Category   string `json:"category" binding:"required"`
	FoodRecipe int    `json:"food_reciepe"`
}

func (h *SubCategoryHandler) Create(c *gin.Context) {
	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return
	}

	count, err := h.DB.Collection("categories").CountDocuments(c.Request.Context(), bson.M{"_id": categoryID})
	if err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	res, err := h.DB.Collection("subcategories").InsertOne(c.Request.Context(), models.SubCategory{
		Name:       req.Name,
		Category:   categoryID,
		FoodRecipe: req.FoodRecipe,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create sub-category"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sub-category created", "id": res.InsertedID})
}

func (h *SubCategoryHandler) List(c *gin.Context) {
	filter := bson.M{}
	if category := c.Query("category"); category != "" {
		categoryID, err := primitive.ObjectIDFromHex(category)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
			return
		}
		filter["category"] = categoryID
	}

	cursor, err := h.DB.Collection("subcategories").Find(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sub-categories"})
		return
	}
	var subCategories []models.SubCategory
	if err := cursor.All(c.Request.Context(), &subCategories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sub-categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subCategories": subCategories})
}

func (h *SubCategoryHandler) ListByCategory(c *gin.Context) {
	categoryID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	cursor, err := h.DB.Collection("subcategories").Find(c.Request.Context(), bson.M{"category": categoryID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sub-categories"})
		return
	}
	var subCategories []models.SubCategory
	if err := cursor.All(c.Request.Context(), &subCategories); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sub-categories"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subCategories": subCategories})
}

func (h *SubCategoryHandler) Update(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var req SubCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categoryID, err := primitive.ObjectIDFromHex(req.Category)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category id"})
		return
	}

	res, err := h.DB.Collection("subcategories").UpdateOne(c.Request.Context(),
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"name":         req.Name,
			"category":     categoryID,
			"food_reciepe": req.FoodRecipe,
		}})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update sub-category"})
		return
	}
	if res.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sub-category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sub-category updated"})
}

func (h *SubCategoryHandler) Delete(c *gin.Context) {
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	res, err := h.DB.Collection("subcategories").DeleteOne(c.Request.Context(), bson.M{"_id": id})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete sub-category"})
		return
	}
	if res.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Sub-category not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sub-category deleted"})
}
