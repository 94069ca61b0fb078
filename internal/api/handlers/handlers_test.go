package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"buy-bye-api-server/internal/geo"
	"buy-bye-api-server/internal/models"
)

func TestValidateDiscount(t *testing.T) {
	assert.Empty(t, validateDiscount("", 0))
	assert.Empty(t, validateDiscount(models.DiscountPercentage, 0))
	assert.Empty(t, validateDiscount(models.DiscountPercentage, 100))
	assert.Empty(t, validateDiscount(models.DiscountAmount, 50))

	assert.NotEmpty(t, validateDiscount(models.DiscountPercentage, -1))
	assert.NotEmpty(t, validateDiscount(models.DiscountPercentage, 101))
	assert.NotEmpty(t, validateDiscount(models.DiscountAmount, -10))
	assert.NotEmpty(t, validateDiscount("bogus", 10))
}

func TestSortListingViews(t *testing.T) {
	views := []ListingView{
		{FinalPrice: 30, Distance: 1},
		{FinalPrice: 10, Distance: 3},
		{FinalPrice: 20, Distance: 2},
	}

	sortListingViews(views, geo.SortCheapest)
	assert.Equal(t, []float64{10, 20, 30}, []float64{views[0].FinalPrice, views[1].FinalPrice, views[2].FinalPrice})

	sortListingViews(views, geo.SortExpensive)
	assert.Equal(t, []float64{30, 20, 10}, []float64{views[0].FinalPrice, views[1].FinalPrice, views[2].FinalPrice})

	sortListingViews(views, geo.SortFarthest)
	assert.Equal(t, []float64{3, 2, 1}, []float64{views[0].Distance, views[1].Distance, views[2].Distance})

	// Anything else sorts nearest.
	sortListingViews(views, "")
	assert.Equal(t, []float64{1, 2, 3}, []float64{views[0].Distance, views[1].Distance, views[2].Distance})
}

func testContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, target, nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestCenterFromQueryParams(t *testing.T) {
	c, _ := testContext(t, "/?lat=31.52&lng=74.35")

	center, ok := centerFromQuery(c, nil)
	require.True(t, ok)
	assert.Equal(t, 31.52, center.Lat)
	assert.Equal(t, 74.35, center.Lng)
}

func TestCenterFromQueryFallsBackToProfile(t *testing.T) {
	c, _ := testContext(t, "/")
	loc := models.NewGeoPoint(67.0011, 24.8607)
	customer := &models.Customer{Location: &loc}

	center, ok := centerFromQuery(c, customer)
	require.True(t, ok)
	assert.Equal(t, 24.8607, center.Lat)
	assert.Equal(t, 67.0011, center.Lng)
}

func TestCenterFromQueryMissingEverywhere(t *testing.T) {
	c, w := testContext(t, "/")

	_, ok := centerFromQuery(c, &models.Customer{})
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCenterFromQueryMalformed(t *testing.T) {
	c, w := testContext(t, "/?lat=abc&lng=74.35")

	_, ok := centerFromQuery(c, nil)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGeoWithinFilterUsesQuerySphereRadius(t *testing.T) {
	filter := geoWithinFilter(geo.Point{Lng: 74.35, Lat: 31.52}, 5)

	within, ok := filter["$geoWithin"].(bson.M)
	require.True(t, ok)
	sphere, ok := within["$centerSphere"].([]interface{})
	require.True(t, ok)
	require.Len(t, sphere, 2)

	assert.Equal(t, []float64{74.35, 31.52}, sphere[0])
	assert.InDelta(t, 5.0/geo.QuerySphereRadiusKm, sphere[1].(float64), 1e-12)
}
