// Package pricing turns the heterogeneous stored price representation into
// numbers and applies listing discounts.
package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"buy-bye-api-server/internal/models"
)

// FallbackBasePrice is substituted when a stored price cannot be parsed.
// Zero: an unparseable price is never invented, it just contributes nothing
// to totals.
const FallbackBasePrice = 0

var (
	digitRuns    = regexp.MustCompile(`\d+`)
	cleanDecimal = regexp.MustCompile(`^\d+\.\d+$`)
	nonNumeric   = regexp.MustCompile(`[^0-9.]`)
)

// ParsePrice extracts a numeric base price from a currency-formatted
// string.
//
// Strings whose numeric content is a clean decimal ("45.50") keep their
// fraction. Everything else has its digit runs concatenated, which defeats
// thousands separators and currency prefixes: "Rs. 2,200" -> 2200.
func ParsePrice(raw string) float64 {
	s := strings.TrimSpace(raw)

	stripped := nonNumeric.ReplaceAllString(s, "")
	if cleanDecimal.MatchString(stripped) {
		v, err := strconv.ParseFloat(stripped, 64)
		if err == nil && v > 0 {
			return v
		}
		return FallbackBasePrice
	}

	runs := digitRuns.FindAllString(s, -1)
	if len(runs) == 0 {
		return FallbackBasePrice
	}
	v, err := strconv.ParseFloat(strings.Join(runs, ""), 64)
	if err != nil || v <= 0 {
		return FallbackBasePrice
	}
	return v
}

// BasePrice resolves a stored price to a number: numeric values are used
// directly, strings go through ParsePrice.
func BasePrice(p models.Price) float64 {
	if p.IsNumber {
		return p.Number
	}
	return ParsePrice(p.Text)
}

// Discount is a vendor listing's optional discount. An empty Type means no
// discount; a zero Value disables the discount as well, matching how the
// documents are stored.
type Discount struct {
	Type  string
	Value float64
}

// Quote is the price pair attached to search and comparison results.
type Quote struct {
	BasePrice  float64 `json:"basePrice"`
	FinalPrice float64 `json:"finalPrice"`
}

// ComputeFinalPrice applies the discount to a base price. Both values are
// rounded to two decimals.
func ComputeFinalPrice(basePrice float64, d Discount) Quote {
	finalPrice := basePrice
	if d.Type != "" && d.Value != 0 {
		switch d.Type {
		case models.DiscountPercentage:
			finalPrice = basePrice * (1 - d.Value/100)
		case models.DiscountAmount:
			finalPrice = basePrice - d.Value
			if finalPrice < 0 {
				finalPrice = 0
			}
		}
	}
	return Quote{
		BasePrice:  Round2(basePrice),
		FinalPrice: Round2(finalPrice),
	}
}

// QuoteListing parses the catalog price and applies the listing's discount
// in one step.
func QuoteListing(p models.Price, d Discount) Quote {
	return ComputeFinalPrice(BasePrice(p), d)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
