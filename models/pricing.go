package models

// PriceRange bounds a pricing recommendation.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PriceFactors breaks a recommendation down for auditing.
type PriceFactors struct {
	BaseRate             float64 `json:"base_rate"`
	ExperienceMultiplier float64 `json:"experience_multiplier"`
	ComplexityAdjustment float64 `json:"complexity_adjustment"`
	DemandAdjustment     float64 `json:"demand_adjustment"`
	DistanceCost         float64 `json:"distance_cost"`
}

// PriceQuote is the pricing pipeline's caller-facing output.
type PriceQuote struct {
	RecommendedPrice float64      `json:"recommended_price"`
	PriceRange       PriceRange   `json:"price_range"`
	Reasoning        string       `json:"reasoning"`
	Factors          PriceFactors `json:"factors"`
	MarketComparison string       `json:"market_comparison,omitempty"`
	Fallback         bool         `json:"fallback,omitempty"`
}
