package models

import "time"

// Sentiment labels for review analysis.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// ReviewSubmission carries a customer's review of a completed booking.
type ReviewSubmission struct {
	BookingID       string `json:"booking_id" binding:"required"`
	CustomerID      string `json:"customer_id" binding:"required"`
	Rating          int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText      string `json:"review_text,omitempty"`
	ServiceQuality  int    `json:"service_quality,omitempty" binding:"omitempty,min=1,max=5"`
	Punctuality     int    `json:"punctuality,omitempty" binding:"omitempty,min=1,max=5"`
	Professionalism int    `json:"professionalism,omitempty" binding:"omitempty,min=1,max=5"`
	ValueForMoney   int    `json:"value_for_money,omitempty" binding:"omitempty,min=1,max=5"`
}

// Review is a customer's rating of a completed booking, annotated with the
// analysis pipeline's sentiment and quality scores. At most one review
// exists per booking.
type Review struct {
	ID              string    `bson:"id" json:"id"`
	BookingID       string    `bson:"booking_id" json:"booking_id"`
	CustomerID      string    `bson:"customer_id" json:"customer_id"`
	ProviderID      string    `bson:"provider_id" json:"provider_id"`
	Rating          int       `bson:"rating" json:"rating"` // 1-5
	ReviewText      string    `bson:"review_text,omitempty" json:"review_text,omitempty"`
	ServiceQuality  int       `bson:"service_quality,omitempty" json:"service_quality,omitempty"`
	Punctuality     int       `bson:"punctuality,omitempty" json:"punctuality,omitempty"`
	Professionalism int       `bson:"professionalism,omitempty" json:"professionalism,omitempty"`
	ValueForMoney   int       `bson:"value_for_money,omitempty" json:"value_for_money,omitempty"`
	SentimentScore  float64   `bson:"sentiment_score" json:"sentiment_score"` // -1 to 1
	QualityScore    float64   `bson:"quality_score" json:"quality_score"`     // 0 to 1
	IsFlagged       bool      `bson:"is_flagged" json:"is_flagged"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// ReviewAnalysis is the review analysis pipeline's output.
type ReviewAnalysis struct {
	SentimentScore     float64  `json:"sentiment_score"` // -1 to 1
	QualityScore       float64  `json:"quality_score"`   // 0 to 1
	IsLikelyFake       bool     `json:"is_likely_fake"`
	Sentiment          string   `json:"sentiment"`
	KeyThemes          []string `json:"key_themes"`
	ActionableFeedback []string `json:"actionable_feedback"`
	Summary            string   `json:"summary"`
	RedFlags           []string `json:"red_flags"`
	Fallback           bool     `json:"fallback,omitempty"`
}
