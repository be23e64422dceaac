package recommendation

import (
	"fmt"
	"math"
	"sort"

	"karigar/models"
)

const maxRecommendations = 10

// FallbackRecommendations is the deterministic recommendation rule used when
// the agent path fails: candidates ordered by rating (highest first), ties
// broken by distance (nearest first), with confidence decreasing down the
// list from 0.8 in 0.05 steps.
func FallbackRecommendations(candidates []models.MatchCandidate) []models.ProviderRecommendation {
	ranked := make([]models.MatchCandidate, len(candidates))
	copy(ranked, candidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	if len(ranked) > maxRecommendations {
		ranked = ranked[:maxRecommendations]
	}

	recommendations := make([]models.ProviderRecommendation, 0, len(ranked))
	for i := range ranked {
		candidate := ranked[i]
		recommendations = append(recommendations, models.ProviderRecommendation{
			ProviderID: candidate.ProviderID,
			Confidence: round2(0.8 - float64(i)*0.05),
			Reasoning: fmt.Sprintf("High rating (%.1f) and nearby (%.1fkm)",
				candidate.Rating, candidate.DistanceKm),
			MatchFactors: []string{"rating", "proximity"},
			Provider:     &candidate,
		})
	}
	return recommendations
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
