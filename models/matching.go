package models

// MatchRequest carries a customer's service request into the matching pipeline.
type MatchRequest struct {
	Category      string   `json:"category" binding:"required"`
	Latitude      float64  `json:"latitude" binding:"required"`
	Longitude     float64  `json:"longitude" binding:"required"`
	PreferredDate string   `json:"preferred_date,omitempty"`
	PreferredTime string   `json:"preferred_time,omitempty"`
	Budget        *float64 `json:"budget,omitempty"`
}

// MatchCandidate is a provider enriched with request-relative data. It lives
// only for the duration of a single matching request.
type MatchCandidate struct {
	ProviderID          string  `json:"id"`
	Name                string  `json:"name"`
	DistanceKm          float64 `json:"distance_km"`
	Rating              float64 `json:"rating"`
	TotalReviews        int     `json:"total_reviews"`
	CompletionRate      float64 `json:"completion_rate"`
	BasePrice           float64 `json:"base_price"`
	AvgPrice            float64 `json:"avg_price"`
	ResponseTimeMinutes int     `json:"response_time_minutes"`
	TotalBookings       int     `json:"total_bookings"`
}

// ProviderMatch is one ranked entry in a matching response.
type ProviderMatch struct {
	ProviderID string          `json:"provider_id"`
	MatchScore float64         `json:"match_score"`
	Reasoning  string          `json:"reasoning"`
	Strengths  []string        `json:"strengths"`
	Concerns   []string        `json:"concerns"`
	Provider   *MatchCandidate `json:"provider,omitempty"`
}

// MatchResult is the matching pipeline's caller-facing output.
type MatchResult struct {
	Matches  []ProviderMatch `json:"matches"`
	Summary  string          `json:"summary,omitempty"`
	Fallback bool            `json:"fallback,omitempty"`
}
