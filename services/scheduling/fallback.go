package scheduling

import (
	"fmt"
	"time"

	"karigar/models"
)

// fallbackSuggestions is the deterministic substitute when the agent path is
// unavailable or unparseable. With computed slots in hand it wraps the first
// five at a fixed confidence; with only a preferred start it synthesizes
// three two-hour windows spaced two hours apart at descending confidence.
func fallbackSuggestions(query models.SlotQuery, slots []models.Slot, reason string) *models.ScheduleSuggestions {
	out := &models.ScheduleSuggestions{
		SuggestedSlots:  []models.SuggestedSlot{},
		Alternatives:    []models.AlternativeSlot{},
		Recommendations: fmt.Sprintf("Fallback scheduling used due to error: %s", reason),
	}

	if len(slots) > 0 {
		for i, slot := range slots {
			if i == maxSuggestions {
				break
			}
			out.SuggestedSlots = append(out.SuggestedSlots, models.SuggestedSlot{
				StartDatetime: slot.Start,
				EndDatetime:   slot.End,
				Confidence:    0.8,
				Reasoning:     "Available slot from provider schedule",
				Conflicts:     []string{},
			})
		}
		return out
	}

	if query.PreferredDate == "" || query.PreferredTimeStart == "" {
		return out
	}
	base, err := time.Parse("2006-01-02T15:04:05", query.PreferredDate+"T"+normalizeClock(query.PreferredTimeStart))
	if err != nil {
		return out
	}

	for i := 0; i < 3; i++ {
		start := base.Add(time.Duration(i*2) * time.Hour)
		out.SuggestedSlots = append(out.SuggestedSlots, models.SuggestedSlot{
			StartDatetime: start,
			EndDatetime:   start.Add(2 * time.Hour),
			Confidence:    0.7 - float64(i)*0.1,
			Reasoning:     fmt.Sprintf("Suggested slot %d based on preferred time", i+1),
			Conflicts:     []string{},
		})
	}
	return out
}

// normalizeClock pads "HH:MM" to "HH:MM:SS".
func normalizeClock(clock string) string {
	if len(clock) == 5 {
		return clock + ":00"
	}
	return clock
}
