package pricing

import (
	"math"

	"karigar/models"
)

// FallbackQuote is the deterministic pricing rule used when the agent path
// fails: the midpoint of base price and market average, adjusted by rating
// relative to 4.0, with a ±20% range.
func FallbackQuote(basePrice, marketAverage, rating float64) *models.PriceQuote {
	ratingMultiplier := 1.0 + (rating-4.0)*0.1
	recommended := round2((basePrice + marketAverage) / 2 * ratingMultiplier)

	return &models.PriceQuote{
		RecommendedPrice: recommended,
		PriceRange: models.PriceRange{
			Min: round2(recommended * 0.8),
			Max: round2(recommended * 1.2),
		},
		Factors: models.PriceFactors{
			BaseRate:             basePrice,
			ExperienceMultiplier: ratingMultiplier,
		},
		MarketComparison: "Fallback pricing calculation",
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
