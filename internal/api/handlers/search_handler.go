package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"buy-bye-api-server/internal/api/middleware"
	"buy-bye-api-server/internal/geo"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/pricing"
)

// SearchHandler serves the customer-facing discovery endpoints.
type SearchHandler struct {
	DB *mongo.Database
}

// VendorResult is a vendor annotated with its distance from the search
// center.
type VendorResult struct {
	models.Vendor
	Distance float64 `json:"distance"`
}

func vendorDistance(center geo.Point, v models.Vendor) float64 {
	if !v.Location.HasCoordinates() {
		return geo.UnknownDistanceKm
	}
	return geo.DistanceKm(center, geo.Point{Lng: v.Location.Lng(), Lat: v.Location.Lat()})
}

// NearbyVendors lists active vendors within a fixed 1 km radius.
func (h *SearchHandler) NearbyVendors(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	center, ok := centerFromQuery(c, customer)
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

	c.JSON(http.StatusOK, gin.H{
		"message": "Nearby vendors retrieved successfully",
		"count":   len(results),
		"vendors": results,
	})
}

// nearbyListings loads the in-stock listings of the given vendors joined to
// their catalog products, returning views without sorting applied.
func (h *SearchHandler) nearbyListings(c *gin.Context, center geo.Point, vendors []models.Vendor) ([]ListingView, error) {
	if len(vendors) == 0 {
		return []ListingView{}, nil
	}
	vendorByID := make(map[primitive.ObjectID]models.Vendor, len(vendors))
	vendorIDs := make([]primitive.ObjectID, 0, len(vendors))
	for _, v := range vendors {
		vendorByID[v.ID] = v
		vendorIDs = append(vendorIDs, v.ID)
	}

	cursor, err := h.DB.Collection("vendorproducts").Find(c.Request.Context(), bson.M{
		"vendor":  bson.M{"$in": vendorIDs},
		"inStock": true,
	})
	if err != nil {
		return nil, err
	}
	var listings []models.VendorProduct
	if err := cursor.All(c.Request.Context(), &listings); err != nil {
		return nil, err
	}

	productIDs := make([]primitive.ObjectID, 0, len(listings))
	for _, l := range listings {
		productIDs = append(productIDs, l.Product)
	}
	products, err := productsByID(c, h.DB, productIDs)
	if err != nil {
		return nil, err
	}

	listingIDs := make([]primitive.ObjectID, 0, len(listings))
	for _, l := range listings {
		listingIDs = append(listingIDs, l.ID)
	}
	ratings, err := ratingsByListing(c, h.DB, listingIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		product, ok := products[l.Product]
		if !ok {
			continue
		}
		vendor := vendorByID[l.Vendor]
		quote := pricing.QuoteListing(product.Price, listingDiscount(l))
		stats := ratings[l.ID]
		views = append(views, ListingView{
			ID:            l.ID,
			Product:       product,
			Vendor:        vendor.Summary(),
			DiscountType:  l.DiscountType,
			DiscountValue: l.DiscountValue,
			InStock:       l.InStock,
			BasePrice:     quote.BasePrice,
			FinalPrice:    quote.FinalPrice,
			Distance:      pricing.Round2(vendorDistance(center, vendor)),
			AverageRating: stats.Average,
			ReviewCount:   stats.Count,
			CreatedAt:     l.CreatedAt,
			UpdatedAt:     l.UpdatedAt,
		})
	}
	return views, nil
}

func sortListingViews(views []ListingView, sortBy string) {
	switch sortBy {
	case geo.SortCheapest:
		sort.SliceStable(views, func(i, j int) bool { return views[i].FinalPrice < views[j].FinalPrice })
	case geo.SortExpensive:
		sort.SliceStable(views, func(i, j int) bool { return views[i].FinalPrice > views[j].FinalPrice })
	case geo.SortFarthest:
		sort.SliceStable(views, func(i, j int) bool { return views[i].Distance > views[j].Distance })
	default: // nearest
		sort.SliceStable(views, func(i, j int) bool { return views[i].Distance < views[j].Distance })
	}
}

// NearbyProducts lists the in-stock listings of vendors within the given
// radius, optionally narrowed by category or sub-category.
func (h *SearchHandler) NearbyProducts(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	center, ok := centerFromQuery(c, customer)
	if !ok {
		return
	}

	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "1"), 64)
	if err != nil || radius <= 0 {
		radius = geo.DefaultRadiusKm
	}

	vendors, err := findNearbyVendors(c, h.DB, center, radius, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search vendors"})
		return
	}

	views, err := h.nearbyListings(c, center, vendors)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	views = filterListingViews(c, views)
	sortListingViews(views, c.Query("sortBy"))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Nearby products retrieved successfully",
		"count":    len(views),
		"products": views,
	})
}

// filterListingViews applies the category/subCategory/searchTerm query
// filters to joined listings.
func filterListingViews(c *gin.Context, views []ListingView) []ListingView {
	categoryID, _ := primitive.ObjectIDFromHex(c.Query("category"))
	subCategoryID, _ := primitive.ObjectIDFromHex(c.Query("subCategory"))
	searchTerm := strings.ToLower(strings.TrimSpace(c.Query("searchTerm")))

	out := views[:0]
	for _, v := range views {
		if !categoryID.IsZero() && v.Product.Category != categoryID {
			continue
		}
		if !subCategoryID.IsZero() && v.Product.SubCategory != subCategoryID {
			continue
		}
		if searchTerm != "" && !strings.Contains(strings.ToLower(v.Product.Title), searchTerm) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SearchNearbyVendorsProducts is the combined discovery endpoint: vendors
// matching the term plus every nearby in-stock listing, both annotated and
// sorted.
func (h *SearchHandler) SearchNearbyVendorsProducts(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)
	center, ok := centerFromQuery(c, customer)
	if !ok {
		return
	}

	radius := geo.ClampRadius(c.DefaultQuery("radius", "1"))

	extra := bson.M{}
	if vendorType := c.Query("vendorType"); vendorType != "" {
		extra["vendorType"] = vendorType
	}
	vendors, err := findNearbyVendors(c, h.DB, center, float64(radius), extra)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search vendors"})
		return
	}

	// The vendor list is narrowed by the search term; the product list comes
	// from every nearby vendor regardless.
	searchTerm := strings.ToLower(strings.TrimSpace(c.Query("searchTerm")))
	matched := make([]VendorResult, 0, len(vendors))
	for _, v := range vendors {
		if searchTerm != "" &&
			!strings.Contains(strings.ToLower(v.Name), searchTerm) &&
			!strings.Contains(strings.ToLower(v.Description), searchTerm) {
			continue
		}
		matched = append(matched, VendorResult{Vendor: v, Distance: pricing.Round2(vendorDistance(center, v))})
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Distance < matched[j].Distance })

	views, err := h.nearbyListings(c, center, vendors)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}
	views = filterListingViews(c, views)
	sortListingViews(views, c.Query("sortBy"))

	c.JSON(http.StatusOK, gin.H{
		"message":  "Search results retrieved successfully",
		"radius":   radius,
		"vendors":  matched,
		"products": views,
	})
}

// PriceComparison lists every nearby in-stock listing of the exact product
// title, cheapest first, so a product page can show the alternatives.
func (h *SearchHandler) PriceComparison(c *gin.Context) {
	customer := middleware.CustomerFromContext(c)

	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product name is required"})
		return
	}

	center, ok := centerFromQuery(c, customer)
	if !ok {
		return
	}

	radius, err := strconv.ParseFloat(c.DefaultQuery("radius", "10"), 64)
	if err != nil || radius <= 0 {
		radius = 10
	}

	vendors, err := findNearbyVendors(c, h.DB, center, radius, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search vendors"})
		return
	}

	views, err := h.nearbyListings(c, center, vendors)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	excludeID, _ := primitive.ObjectIDFromHex(c.Query("excludeId"))
	matches := make([]ListingView, 0, len(views))
	for _, v := range views {
		if !strings.EqualFold(v.Product.Title, name) {
			continue
		}
		if !excludeID.IsZero() && v.ID == excludeID {
			continue
		}
		matches = append(matches, v)
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].FinalPrice < matches[j].FinalPrice })

	c.JSON(http.StatusOK, gin.H{
		"message":  "Price comparison retrieved successfully",
		"count":    len(matches),
		"products": matches,
	})
}
