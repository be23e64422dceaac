package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	availabilityRepo "karigar/database/repository/availability"
	bookingRepo "karigar/database/repository/booking"
	"karigar/models"
	"karigar/services/agent"
)

// DefaultDurationMinutes is assumed when a query does not specify one.
const DefaultDurationMinutes = 120

const maxSuggestions = 5

const schedulingInstructions = `You are a scheduling optimization agent. Your role is to suggest the best time slots for service bookings.

Consider:
1. Customer's preferred time windows
2. Provider's availability schedule
3. Provider's existing bookings
4. Travel time between appointments
5. Service duration estimates
6. Buffer time for preparation/cleanup
7. Peak vs off-peak hours

Return a JSON response with:
{
    "suggested_slots": [
        {
            "start_datetime": "ISO datetime string",
            "end_datetime": "ISO datetime string",
            "confidence": 0-1,
            "reasoning": "why this slot is optimal",
            "conflicts": []
        }
    ],
    "alternatives": [
        {
            "start_datetime": "ISO datetime string",
            "end_datetime": "ISO datetime string",
            "reasoning": "alternative option"
        }
    ],
    "recommendations": "overall scheduling recommendations"
}`

// SchedulingService suggests booking slots for a provider, with the
// availability calculator as the authoritative source and the agent as an
// annotator on top of it.
type SchedulingService interface {
	// SuggestSlots produces ranked, annotated slot suggestions.
	SuggestSlots(ctx context.Context, query models.SlotQuery) (*models.ScheduleSuggestions, error)

	// ComputeSlots returns the authoritative bookable windows for a provider
	// on one date. Used both by SuggestSlots and by the booking lifecycle's
	// schedule guard.
	ComputeSlots(ctx context.Context, providerID string, date time.Time, durationMinutes int) ([]models.Slot, error)
}

// DefaultSchedulingService implements SchedulingService.
type DefaultSchedulingService struct {
	AvailabilityRepo availabilityRepo.AvailabilityRepository
	BookingRepo      bookingRepo.BookingRepository
	Invoker          *agent.Invoker
}

func (s *DefaultSchedulingService) ComputeSlots(
	ctx context.Context,
	providerID string,
	date time.Time,
	durationMinutes int,
) ([]models.Slot, error) {
	if durationMinutes <= 0 {
		durationMinutes = DefaultDurationMinutes
	}

	weekly, err := s.AvailabilityRepo.GetWeekly(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load weekly availability: %w", err)
	}
	var available []models.ProviderAvailability
	for _, entry := range weekly {
		if entry.IsAvailable {
			available = append(available, entry)
		}
	}

	bookings, err := s.BookingRepo.ActiveForProvider(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bookings: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	timeOff, err := s.AvailabilityRepo.TimeOffOverlapping(ctx, providerID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load time off: %w", err)
	}

	return ComputeSlots(available, bookings, timeOff, date, durationMinutes)
}

func (s *DefaultSchedulingService) SuggestSlots(ctx context.Context, query models.SlotQuery) (*models.ScheduleSuggestions, error) {
	duration := query.DurationMinutes
	if duration <= 0 {
		duration = DefaultDurationMinutes
	}

	var slots []models.Slot
	if query.PreferredDate != "" {
		date, err := time.Parse("2006-01-02", query.PreferredDate)
		if err != nil {
			return nil, fmt.Errorf("invalid preferred date %q: %w", query.PreferredDate, err)
		}
		slots, err = s.ComputeSlots(ctx, query.ProviderID, date, duration)
		if err != nil {
			return nil, err
		}
	}

	existing, err := s.BookingRepo.ActiveForProvider(ctx, query.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active bookings: %w", err)
	}

	payload := buildAgentContext(query, duration, slots, existing)

	result := agent.Invoke(ctx, s.Invoker, agent.Call[*models.ScheduleSuggestions]{
		Agent:        "scheduling_agent",
		Instructions: schedulingInstructions,
		Context:      payload,
		Parse: func(raw []byte) (*models.ScheduleSuggestions, error) {
			return parseAgentSuggestions(raw, slots)
		},
		Fallback: func(reason string) *models.ScheduleSuggestions {
			return fallbackSuggestions(query, slots, reason)
		},
	})

	suggestions := result.Value
	suggestions.Fallback = result.Fallback
	return suggestions, nil
}

type agentSlotContext struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type agentBookingContext struct {
	Start    string `json:"start,omitempty"`
	Duration int    `json:"duration"`
}

type schedulingContext struct {
	ProviderID             string                `json:"provider_id"`
	PreferredDate          string                `json:"preferred_date,omitempty"`
	PreferredTimeStart     string                `json:"preferred_time_start,omitempty"`
	PreferredTimeEnd       string                `json:"preferred_time_end,omitempty"`
	ServiceDurationMinutes int                   `json:"service_duration_minutes"`
	AvailableSlots         []agentSlotContext    `json:"available_slots"`
	ExistingBookings       []agentBookingContext `json:"existing_bookings"`
	ExecutionContext       string                `json:"execution_context"`
}

func buildAgentContext(query models.SlotQuery, duration int, slots []models.Slot, existing []models.Booking) schedulingContext {
	payload := schedulingContext{
		ProviderID:             query.ProviderID,
		PreferredDate:          query.PreferredDate,
		PreferredTimeStart:     query.PreferredTimeStart,
		PreferredTimeEnd:       query.PreferredTimeEnd,
		ServiceDurationMinutes: duration,
		AvailableSlots:         make([]agentSlotContext, 0, len(slots)),
		ExistingBookings:       make([]agentBookingContext, 0, len(existing)),
		ExecutionContext:       "scheduling",
	}
	for _, slot := range slots {
		payload.AvailableSlots = append(payload.AvailableSlots, agentSlotContext{
			Start: slot.Start.Format(time.RFC3339),
			End:   slot.End.Format(time.RFC3339),
		})
	}
	for _, b := range existing {
		entry := agentBookingContext{Duration: b.EstimatedDurationMinutes}
		if entry.Duration <= 0 {
			entry.Duration = duration
		}
		if b.ScheduledDatetime != nil {
			entry.Start = b.ScheduledDatetime.Format(time.RFC3339)
		}
		payload.ExistingBookings = append(payload.ExistingBookings, entry)
	}
	return payload
}

type wireSuggestedSlot struct {
	StartDatetime string   `json:"start_datetime"`
	EndDatetime   string   `json:"end_datetime"`
	Confidence    float64  `json:"confidence"`
	Reasoning     string   `json:"reasoning"`
	Conflicts     []string `json:"conflicts"`
}

type wireAlternative struct {
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	Reasoning     string `json:"reasoning"`
}

type wireSuggestions struct {
	SuggestedSlots  []wireSuggestedSlot `json:"suggested_slots"`
	Alternatives    []wireAlternative   `json:"alternatives"`
	Recommendations string              `json:"recommendations"`
}

func parseAgentSuggestions(raw []byte, computed []models.Slot) (*models.ScheduleSuggestions, error) {
	var wire wireSuggestions
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	if len(wire.SuggestedSlots) == 0 && len(computed) > 0 {
		return nil, fmt.Errorf("agent returned no suggested slots")
	}

	out := &models.ScheduleSuggestions{
		SuggestedSlots:  make([]models.SuggestedSlot, 0, len(wire.SuggestedSlots)),
		Alternatives:    make([]models.AlternativeSlot, 0, len(wire.Alternatives)),
		Recommendations: wire.Recommendations,
	}
	for _, ws := range wire.SuggestedSlots {
		start, err := parseAgentTime(ws.StartDatetime)
		if err != nil {
			return nil, fmt.Errorf("bad suggested slot start %q: %w", ws.StartDatetime, err)
		}
		end, err := parseAgentTime(ws.EndDatetime)
		if err != nil {
			return nil, fmt.Errorf("bad suggested slot end %q: %w", ws.EndDatetime, err)
		}
		conflicts := ws.Conflicts
		if conflicts == nil {
			conflicts = []string{}
		}
		out.SuggestedSlots = append(out.SuggestedSlots, models.SuggestedSlot{
			StartDatetime: start,
			EndDatetime:   end,
			Confidence:    ws.Confidence,
			Reasoning:     ws.Reasoning,
			Conflicts:     conflicts,
		})
		if len(out.SuggestedSlots) == maxSuggestions {
			break
		}
	}
	for _, wa := range wire.Alternatives {
		start, err := parseAgentTime(wa.StartDatetime)
		if err != nil {
			continue
		}
		end, err := parseAgentTime(wa.EndDatetime)
		if err != nil {
			continue
		}
		out.Alternatives = append(out.Alternatives, models.AlternativeSlot{
			StartDatetime: start,
			EndDatetime:   end,
			Reasoning:     wa.Reasoning,
		})
	}
	return out, nil
}

func parseAgentTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", value)
}
