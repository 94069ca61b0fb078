// Package rationpack assembles multi-item bundles across nearby vendors
// and ranks them by total price or distance.
package rationpack

import (
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"buy-bye-api-server/internal/geo"
	"buy-bye-api-server/internal/models"
	"buy-bye-api-server/internal/pricing"
)

// StockEntry is one in-stock listing of a vendor, joined to its catalog
// product. Entries must be in ascending listing-id order: when several
// listings match a requested name, the first (oldest) listing wins. That
// tie-break is deliberate, not incidental.
type StockEntry struct {
	ListingID primitive.ObjectID
	ProductID primitive.ObjectID
	Title     string
	ImageURL  string
	Price     models.Price
	Discount  pricing.Discount
}

// VendorStock is a nearby vendor with its in-stock listings.
type VendorStock struct {
	ID       primitive.ObjectID
	Name     string
	Location models.GeoPoint
	Listings []StockEntry
}

// Item is one requested product resolved against a vendor. Unavailable
// items keep the requested title and contribute nothing to totals.
type Item struct {
	ProductID       *primitive.ObjectID `json:"productId"`
	VendorProductID *primitive.ObjectID `json:"vendorProductId"`
	Title           string              `json:"title"`
	ImageURL        string              `json:"imageUrl,omitempty"`
	OriginalPrice   float64             `json:"originalPrice"`
	DiscountedPrice float64             `json:"discountedPrice"`
	DiscountType    string              `json:"discountType,omitempty"`
	DiscountValue   float64             `json:"discountValue,omitempty"`
	IsAvailable     bool                `json:"isAvailable"`
}

// Bundle is one vendor's ration pack offer.
type Bundle struct {
	Vendor                 models.VendorSummary `json:"vendor"`
	Items                  []Item               `json:"items"`
	TotalOriginalPrice     float64              `json:"totalOriginalPrice"`
	TotalDiscountedPrice   float64              `json:"totalDiscountedPrice"`
	Savings                float64              `json:"savings"`
	SavingsPercentage      float64              `json:"savingsPercentage"`
	AvailableProductsCount int                  `json:"availableProductsCount"`
	RequestedProductsCount int                  `json:"requestedProductsCount"`
	Distance               float64              `json:"distance,omitempty"`
}

// findMatch returns the first in-stock listing whose product title contains
// the requested name, case-insensitively.
func findMatch(name string, listings []StockEntry) *StockEntry {
	needle := strings.ToLower(name)
	for i := range listings {
		if strings.Contains(strings.ToLower(listings[i].Title), needle) {
			return &listings[i]
		}
	}
	return nil
}

// Build resolves each requested product name against each vendor's stock.
// A vendor is included as long as at least one requested item is available;
// the missing items become unavailable placeholders.
func Build(productNames []string, vendors []VendorStock) []Bundle {
	bundles := make([]Bundle, 0, len(vendors))

	for _, vendor := range vendors {
		items := make([]Item, 0, len(productNames))
		var totalOriginal, totalDiscounted float64
		available := 0

		for _, name := range productNames {
			match := findMatch(name, vendor.Listings)
			if match == nil {
				items = append(items, Item{Title: name})
				continue
			}

			available++
			quote := pricing.QuoteListing(match.Price, match.Discount)
			totalOriginal += quote.BasePrice
			totalDiscounted += quote.FinalPrice

			productID := match.ProductID
			listingID := match.ListingID
			items = append(items, Item{
				ProductID:       &productID,
				VendorProductID: &listingID,
				Title:           match.Title,
				ImageURL:        match.ImageURL,
				OriginalPrice:   quote.BasePrice,
				DiscountedPrice: quote.FinalPrice,
				DiscountType:    match.Discount.Type,
				DiscountValue:   match.Discount.Value,
				IsAvailable:     true,
			})
		}

		if available == 0 {
			continue
		}

		savings := totalOriginal - totalDiscounted
		savingsPct := 0.0
		if totalOriginal > 0 {
			savingsPct = savings / totalOriginal * 100
		}

		bundles = append(bundles, Bundle{
			Vendor: models.VendorSummary{
				ID:       vendor.ID,
				Name:     vendor.Name,
				Location: vendor.Location,
			},
			Items:                  items,
			TotalOriginalPrice:     pricing.Round2(totalOriginal),
			TotalDiscountedPrice:   pricing.Round2(totalDiscounted),
			Savings:                pricing.Round2(savings),
			SavingsPercentage:      pricing.Round2(savingsPct),
			AvailableProductsCount: available,
			RequestedProductsCount: len(productNames),
		})
	}

	return bundles
}

// Rank orders bundles in place. cheapest/expensive go by total discounted
// price, nearest/farthest by vendor distance from center (computed here);
// any other value leaves the input order untouched. Sorting is stable, so
// ties keep their relative order.
func Rank(bundles []Bundle, sortBy string, center geo.Point) {
	switch sortBy {
	case geo.SortCheapest:
		sort.SliceStable(bundles, func(i, j int) bool {
			return bundles[i].TotalDiscountedPrice < bundles[j].TotalDiscountedPrice
		})
	case geo.SortExpensive:
		sort.SliceStable(bundles, func(i, j int) bool {
			return bundles[i].TotalDiscountedPrice > bundles[j].TotalDiscountedPrice
		})
	case geo.SortNearest, geo.SortFarthest:
		for i := range bundles {
			loc := bundles[i].Vendor.Location
			if !loc.HasCoordinates() {
				bundles[i].Distance = geo.UnknownDistanceKm
				continue
			}
			bundles[i].Distance = geo.DistanceKm(center, geo.Point{Lng: loc.Lng(), Lat: loc.Lat()})
		}
		if sortBy == geo.SortNearest {
			sort.SliceStable(bundles, func(i, j int) bool {
				return bundles[i].Distance < bundles[j].Distance
			})
		} else {
			sort.SliceStable(bundles, func(i, j int) bool {
				return bundles[i].Distance > bundles[j].Distance
			})
		}
	}
}
