package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackQuote(t *testing.T) {
	tests := []struct {
		name          string
		basePrice     float64
		marketAverage float64
		rating        float64
		want          float64
	}{
		{"rating at the pivot keeps the midpoint", 500, 700, 4.0, 600},
		{"high rating lifts the price", 500, 700, 4.5, 630},
		{"low rating discounts the price", 500, 700, 3.0, 540},
		{"market average equals base when no data", 500, 500, 4.0, 500},
		{"rounds to two decimals", 100, 150, 4.3, 128.75}, // 125 * 1.03
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote := FallbackQuote(tt.basePrice, tt.marketAverage, tt.rating)
			assert.InDelta(t, tt.want, quote.RecommendedPrice, 1e-9)
		})
	}
}

func TestFallbackQuoteRange(t *testing.T) {
	quote := FallbackQuote(500, 700, 4.0)

	require.Equal(t, 600.0, quote.RecommendedPrice)
	assert.Equal(t, 480.0, quote.PriceRange.Min, "min is 20% below recommended")
	assert.Equal(t, 720.0, quote.PriceRange.Max, "max is 20% above recommended")
	assert.Equal(t, 500.0, quote.Factors.BaseRate)
	assert.Equal(t, 1.0, quote.Factors.ExperienceMultiplier)
}
