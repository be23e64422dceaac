package models

// RecommendationRequest asks for personalized provider suggestions around a
// customer's location. Category is optional; without it every approved
// provider in range is considered.
type RecommendationRequest struct {
	CustomerID string  `json:"customer_id" binding:"required"`
	Latitude   float64 `json:"latitude" binding:"required"`
	Longitude  float64 `json:"longitude" binding:"required"`
	Category   string  `json:"category,omitempty"`
	Limit      int     `json:"limit,omitempty" binding:"omitempty,min=1,max=50"`
}

// ProviderRecommendation is one ranked entry in a recommendation response.
type ProviderRecommendation struct {
	ProviderID   string          `json:"provider_id"`
	Confidence   float64         `json:"confidence"` // 0 to 1
	Reasoning    string          `json:"reasoning"`
	MatchFactors []string        `json:"match_factors"`
	Provider     *MatchCandidate `json:"provider,omitempty"`
}

// RecommendationInsights summarizes what the pipeline learned about the
// customer's preferences.
type RecommendationInsights struct {
	PreferredCategories []string    `json:"preferred_categories,omitempty"`
	PriceRange          *PriceRange `json:"price_range,omitempty"`
	LocationPreference  string      `json:"location_preference,omitempty"`
}

// RecommendationResult is the recommendation pipeline's caller-facing output.
type RecommendationResult struct {
	Recommendations []ProviderRecommendation `json:"recommendations"`
	Insights        RecommendationInsights   `json:"personalization_insights"`
	Summary         string                   `json:"summary,omitempty"`
	Fallback        bool                     `json:"fallback,omitempty"`
}
