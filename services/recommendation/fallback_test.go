package recommendation

import (
	"fmt"
	"testing"

	"karigar/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(id string, rating, km float64) models.MatchCandidate {
	return models.MatchCandidate{ProviderID: id, Rating: rating, DistanceKm: km}
}

func TestFallbackRecommendationsOrdering(t *testing.T) {
	recs := FallbackRecommendations([]models.MatchCandidate{
		candidate("far-good", 4.8, 20),
		candidate("near-good", 4.8, 2),
		candidate("near-best", 5.0, 8),
		candidate("near-poor", 3.1, 1),
	})

	require.Len(t, recs, 4)
	assert.Equal(t, "near-best", recs[0].ProviderID, "rating sorts first")
	assert.Equal(t, "near-good", recs[1].ProviderID, "distance breaks rating ties")
	assert.Equal(t, "far-good", recs[2].ProviderID)
	assert.Equal(t, "near-poor", recs[3].ProviderID)
}

func TestFallbackRecommendationsConfidenceDecreases(t *testing.T) {
	var candidates []models.MatchCandidate
	for i := 0; i < 12; i++ {
		candidates = append(candidates, candidate(fmt.Sprintf("p%d", i), 5.0-float64(i)*0.1, 1))
	}

	recs := FallbackRecommendations(candidates)

	require.Len(t, recs, 10, "capped at ten suggestions")
	assert.InDelta(t, 0.8, recs[0].Confidence, 1e-9)
	assert.InDelta(t, 0.75, recs[1].Confidence, 1e-9)
	assert.InDelta(t, 0.35, recs[9].Confidence, 1e-9)
}

func TestFallbackRecommendationsShape(t *testing.T) {
	recs := FallbackRecommendations([]models.MatchCandidate{candidate("p1", 4.5, 3.2)})

	require.Len(t, recs, 1)
	assert.Equal(t, "High rating (4.5) and nearby (3.2km)", recs[0].Reasoning)
	assert.Equal(t, []string{"rating", "proximity"}, recs[0].MatchFactors)
	require.NotNil(t, recs[0].Provider)
	assert.Equal(t, "p1", recs[0].Provider.ProviderID)
}

func TestFallbackRecommendationsDeterministic(t *testing.T) {
	candidates := []models.MatchCandidate{
		candidate("a", 4.2, 5),
		candidate("b", 4.9, 9),
		candidate("c", 4.2, 3),
	}

	first := FallbackRecommendations(candidates)
	second := FallbackRecommendations(candidates)

	assert.Equal(t, first, second)
}
