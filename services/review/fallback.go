package review

import (
	"fmt"
	"math"

	"karigar/models"
)

// FallbackAnalysis is the deterministic review analysis used when the agent
// path fails: sentiment is read off the star rating and quality off the
// review length, with no fake-review flagging.
func FallbackAnalysis(rating int, reviewText string) models.ReviewAnalysis {
	var sentimentScore float64
	var sentiment string
	switch {
	case rating >= 4:
		sentimentScore = 0.7
		sentiment = models.SentimentPositive
	case rating == 3:
		sentimentScore = 0.0
		sentiment = models.SentimentNeutral
	default:
		sentimentScore = -0.7
		sentiment = models.SentimentNegative
	}

	// Longer reviews count as higher quality, saturating at 100 characters.
	qualityScore := math.Min(1.0, float64(len(reviewText))/100)

	return models.ReviewAnalysis{
		SentimentScore:     round2(sentimentScore),
		QualityScore:       round2(qualityScore),
		IsLikelyFake:       false,
		Sentiment:          sentiment,
		KeyThemes:          []string{},
		ActionableFeedback: []string{},
		Summary:            fmt.Sprintf("Rating: %d/5", rating),
		RedFlags:           []string{},
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
