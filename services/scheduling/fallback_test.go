package scheduling

import (
	"testing"
	"time"

	"karigar/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackSuggestionsFromComputedSlots(t *testing.T) {
	slots := make([]models.Slot, 8)
	for i := range slots {
		start := mondayAt(9+i, 0)
		slots[i] = models.Slot{Start: start, End: start.Add(time.Hour)}
	}

	out := fallbackSuggestions(models.SlotQuery{ProviderID: "prov-1"}, slots, "agent down")

	require.Len(t, out.SuggestedSlots, 5, "capped at five suggestions")
	for i, s := range out.SuggestedSlots {
		assert.Equal(t, slots[i].Start, s.StartDatetime)
		assert.Equal(t, slots[i].End, s.EndDatetime)
		assert.Equal(t, 0.8, s.Confidence)
	}
	assert.Contains(t, out.Recommendations, "agent down")
}

func TestFallbackSuggestionsSynthesizedFromPreferredTime(t *testing.T) {
	query := models.SlotQuery{
		ProviderID:         "prov-1",
		PreferredDate:      "2026-03-02",
		PreferredTimeStart: "10:00",
	}

	out := fallbackSuggestions(query, nil, "no availability data")

	require.Len(t, out.SuggestedSlots, 3)
	wantStarts := []time.Time{
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC),
	}
	wantConfidence := []float64{0.7, 0.6, 0.5}
	for i, s := range out.SuggestedSlots {
		assert.Equal(t, wantStarts[i], s.StartDatetime)
		assert.Equal(t, wantStarts[i].Add(2*time.Hour), s.EndDatetime)
		assert.InDelta(t, wantConfidence[i], s.Confidence, 1e-9)
	}
}

func TestFallbackSuggestionsEmptyWithoutPreferredTime(t *testing.T) {
	out := fallbackSuggestions(models.SlotQuery{ProviderID: "prov-1"}, nil, "nothing to go on")
	assert.Empty(t, out.SuggestedSlots)
	assert.Empty(t, out.Alternatives)
}
