package rationpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"buy-bye-api-server/internal/geo"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/pricing"
)

func vendorAt(name string, lng, lat float64, listings ...StockEntry) VendorStock {
	return VendorStock{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Location: models.NewGeoPoint(lng, lat),
		Listings: listings,
	}
}

func listing(title string, price models.Price, d pricing.Discount) StockEntry {
	return StockEntry{
		ListingID: primitive.NewObjectID(),
		ProductID: primitive.NewObjectID(),
		Title:     title,
		Price:     price,
		Discount:  d,
	}
}

func TestBuildPartialAvailability(t *testing.T) {
	vendor := vendorAt("Corner Store", 74.35, 31.52,
		listing("Basmati Rice 5kg", models.PriceFromString("Rs. 1,250"), pricing.Discount{}),
		listing("Cooking Oil 1L", models.PriceFromNumber(550), pricing.Discount{Type: models.DiscountAmount, Value: 50}),
	)

	bundles := Build([]string{"rice", "oil", "sugar"}, []VendorStock{vendor})
	require.Len(t, bundles, 1)

	b := bundles[0]
	assert.Equal(t, 2, b.AvailableProductsCount)
	assert.Equal(t, 3, b.RequestedProductsCount)
	require.Len(t, b.Items, 3)

	// The unavailable item keeps the requested name and contributes zero.
	sugar := b.Items[2]
	assert.False(t, sugar.IsAvailable)
	assert.Equal(t, "sugar", sugar.Title)
	assert.Nil(t, sugar.ProductID)
	assert.Zero(t, sugar.OriginalPrice)
	assert.Zero(t, sugar.DiscountedPrice)

	assert.Equal(t, 1800.0, b.TotalOriginalPrice)
	assert.Equal(t, 1750.0, b.TotalDiscountedPrice)
	assert.Equal(t, 50.0, b.Savings)
	assert.InDelta(t, 2.78, b.SavingsPercentage, 0.01)
}

func TestBuildExcludesVendorWithNothingAvailable(t *testing.T) {
	vendor := vendorAt("Bakery", 74.35, 31.52,
		listing("Fresh Bread", models.PriceFromNumber(120), pricing.Discount{}),
	)

	bundles := Build([]string{"rice", "sugar"}, []VendorStock{vendor})
	assert.Empty(t, bundles)
}

func TestBuildFirstMatchWins(t *testing.T) {
	first := listing("Rice Premium", models.PriceFromNumber(100), pricing.Discount{})
	second := listing("Rice Economy", models.PriceFromNumber(80), pricing.Discount{})
	vendor := vendorAt("Store", 74.35, 31.52, first, second)

	bundles := Build([]string{"rice"}, []VendorStock{vendor})
	require.Len(t, bundles, 1)
	require.Len(t, bundles[0].Items, 1)
	assert.Equal(t, first.ListingID, *bundles[0].Items[0].VendorProductID)
}

func TestBuildCaseInsensitiveMatch(t *testing.T) {
	vendor := vendorAt("Store", 74.35, 31.52,
		listing("BASMATI Rice", models.PriceFromNumber(100), pricing.Discount{}),
	)

	bundles := Build([]string{"basmati"}, []VendorStock{vendor})
	require.Len(t, bundles, 1)
	assert.True(t, bundles[0].Items[0].IsAvailable)
}

func TestBuildZeroTotalSavingsPercentage(t *testing.T) {
	// An available item whose price cannot be parsed contributes zero;
	// the percentage guard must yield 0, not NaN.
	vendor := vendorAt("Store", 74.35, 31.52,
		listing("Mystery Item", models.PriceFromString("call for price"), pricing.Discount{}),
	)

	bundles := Build([]string{"mystery"}, []VendorStock{vendor})
	require.Len(t, bundles, 1)
	assert.Zero(t, bundles[0].TotalOriginalPrice)
	assert.Zero(t, bundles[0].SavingsPercentage)
}

func TestRankCheapestAndExpensive(t *testing.T) {
	cheap := Bundle{TotalDiscountedPrice: 100}
	mid := Bundle{TotalDiscountedPrice: 200}
	dear := Bundle{TotalDiscountedPrice: 300}

	bundles := []Bundle{mid, dear, cheap}
	Rank(bundles, geo.SortCheapest, geo.Point{})
	assert.Equal(t, []float64{100, 200, 300}, totals(bundles))

	Rank(bundles, geo.SortExpensive, geo.Point{})
	assert.Equal(t, []float64{300, 200, 100}, totals(bundles))
}

func TestRankNearestComputesDistance(t *testing.T) {
	center := geo.Point{Lng: 74.3587, Lat: 31.5204}
	near := Bundle{Vendor: models.VendorSummary{Location: models.NewGeoPoint(74.36, 31.52)}}
	far := Bundle{Vendor: models.VendorSummary{Location: models.NewGeoPoint(74.50, 31.60)}}
	unknown := Bundle{Vendor: models.VendorSummary{Location: models.GeoPoint{}}}

	bundles := []Bundle{far, unknown, near}
	Rank(bundles, geo.SortNearest, center)

	assert.Equal(t, near.Vendor.Location, bundles[0].Vendor.Location)
	assert.Equal(t, far.Vendor.Location, bundles[1].Vendor.Location)
	// Missing coordinates sort last with the sentinel distance.
	assert.Equal(t, float64(geo.UnknownDistanceKm), bundles[2].Distance)
}

func TestRankUnknownSortKeepsOrder(t *testing.T) {
	a := Bundle{TotalDiscountedPrice: 300}
	b := Bundle{TotalDiscountedPrice: 100}

	bundles := []Bundle{a, b}
	Rank(bundles, "alphabetical", geo.Point{})
	assert.Equal(t, []float64{300, 100}, totals(bundles))
}

func totals(bundles []Bundle) []float64 {
	out := make([]float64, len(bundles))
	for i, b := range bundles {
		out[i] = b.TotalDiscountedPrice
	}
	return out
}
