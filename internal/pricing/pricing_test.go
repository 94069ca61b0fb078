package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"buy-bye-api-server/internal/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"Rs. 200", 200},
		{"Rs. 2,200", 2200},
		{"1,250", 1250},
		{"45.50", 45.5},
		{"  45.50  ", 45.5},
		{"200", 200},
		{"free", FallbackBasePrice},
		{"", FallbackBasePrice},
		{"Rs.", FallbackBasePrice},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePrice(tt.raw), "price %q", tt.raw)
	}
}

func TestBasePrice(t *testing.T) {
	assert.Equal(t, 99.5, BasePrice(models.PriceFromNumber(99.5)))
	assert.Equal(t, float64(200), BasePrice(models.PriceFromString("Rs. 200")))
}

func TestComputeFinalPricePercentage(t *testing.T) {
	tests := []struct {
		base  float64
		value float64
		want  float64
	}{
		{100, 0, 100},
		{100, 10, 90},
		{100, 100, 0},
		{200, 25, 150},
		{50, 50, 25},
	}
	for _, tt := range tests {
		q := ComputeFinalPrice(tt.base, Discount{Type: models.DiscountPercentage, Value: tt.value})
		assert.Equal(t, tt.want, q.FinalPrice, "base %v value %v", tt.base, tt.value)
		assert.GreaterOrEqual(t, q.FinalPrice, 0.0)
		assert.LessOrEqual(t, q.FinalPrice, q.BasePrice)
	}
}

func TestComputeFinalPriceAmount(t *testing.T) {
	q := ComputeFinalPrice(100, Discount{Type: models.DiscountAmount, Value: 30})
	assert.Equal(t, 70.0, q.FinalPrice)

	// A flat discount never drives the price negative.
	q = ComputeFinalPrice(100, Discount{Type: models.DiscountAmount, Value: 150})
	assert.Equal(t, 0.0, q.FinalPrice)
}

func TestComputeFinalPriceNoDiscount(t *testing.T) {
	q := ComputeFinalPrice(123.456, Discount{})
	assert.Equal(t, 123.46, q.BasePrice)
	assert.Equal(t, 123.46, q.FinalPrice)
}

func TestQuoteListing(t *testing.T) {
	q := QuoteListing(models.PriceFromString("Rs. 1,000"), Discount{Type: models.DiscountPercentage, Value: 20})
	assert.Equal(t, 1000.0, q.BasePrice)
	assert.Equal(t, 800.0, q.FinalPrice)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, Round2(1.2345))
	assert.Equal(t, 1.24, Round2(1.235))
	assert.Equal(t, 0.0, Round2(0))
}
