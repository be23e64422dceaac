package matching

import (
	"fmt"
	"math"
	"sort"

	"karigar/models"
)

const maxFallbackMatches = 5

// FallbackMatches scores candidates with the deterministic rule-based
// formula used whenever the agent path fails: a base of 50, boosted by
// rating above 3.0, proximity and completion rate, clamped to [0,100].
// Pure and deterministic given identical input.
func FallbackMatches(candidates []models.MatchCandidate) []models.ProviderMatch {
	matches := make([]models.ProviderMatch, 0, len(candidates))

	for i := range candidates {
		c := &candidates[i]
		score := 50.0
		score += (c.Rating - 3.0) * 10

		switch {
		case c.DistanceKm < 5:
			score += 20
		case c.DistanceKm < 10:
			score += 10
		}

		score += (c.CompletionRate - 80) * 0.2
		score = math.Max(0, math.Min(100, score))

		matches = append(matches, models.ProviderMatch{
			ProviderID: c.ProviderID,
			MatchScore: math.Round(score*100) / 100,
			Reasoning: fmt.Sprintf("Based on rating (%.1f), distance (%.1fkm), and completion rate (%.0f%%)",
				c.Rating, c.DistanceKm, c.CompletionRate),
			Strengths: []string{},
			Concerns:  []string{},
			Provider:  c,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > maxFallbackMatches {
		matches = matches[:maxFallbackMatches]
	}
	return matches
}
