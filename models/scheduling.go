package models

import "time"

// Slot is one bookable window of the requested duration, generated fresh per
// scheduling request and never persisted.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the slot (start inclusive).
func (s Slot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// SlotQuery describes one scheduling request.
type SlotQuery struct {
	ProviderID         string `json:"provider_id" binding:"required"`
	PreferredDate      string `json:"preferred_date,omitempty"` // "2006-01-02"
	PreferredTimeStart string `json:"preferred_time_start,omitempty"`
	PreferredTimeEnd   string `json:"preferred_time_end,omitempty"`
	DurationMinutes    int    `json:"duration_minutes,omitempty"`
}

// SuggestedSlot is one annotated slot suggestion.
type SuggestedSlot struct {
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Confidence    float64   `json:"confidence"`
	Reasoning     string    `json:"reasoning"`
	Conflicts     []string  `json:"conflicts"`
}

// AlternativeSlot is a secondary suggestion without confidence scoring.
type AlternativeSlot struct {
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Reasoning     string    `json:"reasoning"`
}

// ScheduleSuggestions is the scheduling pipeline's caller-facing output.
type ScheduleSuggestions struct {
	SuggestedSlots  []SuggestedSlot   `json:"suggested_slots"`
	Alternatives    []AlternativeSlot `json:"alternatives"`
	Recommendations string            `json:"recommendations,omitempty"`
	Fallback        bool              `json:"fallback,omitempty"`
}
