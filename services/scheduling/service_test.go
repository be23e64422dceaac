package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	availabilityRepo "karigar/database/repository/availability"
	bookingRepo "karigar/database/repository/booking"
	"karigar/models"
	"karigar/services/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAvailabilityRepo struct {
	weekly  []models.ProviderAvailability
	timeOff []models.ProviderTimeOff
}

func (r *fakeAvailabilityRepo) ReplaceWeekly(ctx context.Context, providerID string, entries []models.ProviderAvailability) error {
	r.weekly = entries
	return nil
}

func (r *fakeAvailabilityRepo) GetWeekly(ctx context.Context, providerID string) ([]models.ProviderAvailability, error) {
	return r.weekly, nil
}

func (r *fakeAvailabilityRepo) AddTimeOff(ctx context.Context, timeOff *models.ProviderTimeOff) error {
	r.timeOff = append(r.timeOff, *timeOff)
	return nil
}

func (r *fakeAvailabilityRepo) DeleteTimeOff(ctx context.Context, providerID, timeOffID string) error {
	return nil
}

func (r *fakeAvailabilityRepo) TimeOffOverlapping(ctx context.Context, providerID string, from, to time.Time) ([]models.ProviderTimeOff, error) {
	return r.timeOff, nil
}

type fakeBookingRepo struct {
	active []models.Booking
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error { return nil }

func (r *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) UpdateStatusIf(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, update bookingRepo.StatusUpdate) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}

func (r *fakeBookingRepo) ActiveForProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	return r.active, nil
}

func (r *fakeBookingRepo) CompletedForCustomer(ctx context.Context, customerID string, limit int) ([]models.Booking, error) {
	return nil, nil
}

func (r *fakeBookingRepo) CountByStatuses(ctx context.Context, providerID string, statuses []models.BookingStatus) (map[models.BookingStatus]int, error) {
	return map[models.BookingStatus]int{}, nil
}

func (r *fakeBookingRepo) AvgCompletedPrice(ctx context.Context, providerID string) (float64, error) {
	return 0, nil
}

func (r *fakeBookingRepo) AvgCompletedPriceByCategory(ctx context.Context, category string) (float64, error) {
	return 0, nil
}

var _ availabilityRepo.AvailabilityRepository = (*fakeAvailabilityRepo)(nil)

type failingGateway struct{}

func (failingGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("model unavailable")
}

type fixedGateway struct{ response string }

func (g fixedGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return g.response, nil
}

func newService(gw agent.Gateway, weekly []models.ProviderAvailability) *DefaultSchedulingService {
	return &DefaultSchedulingService{
		AvailabilityRepo: &fakeAvailabilityRepo{weekly: weekly},
		BookingRepo:      &fakeBookingRepo{},
		Invoker: agent.NewInvoker(gw, nil, agent.Options{
			Timeout:          time.Second,
			MaxAttempts:      1,
			BreakerThreshold: 5,
			BreakerCoolOff:   time.Minute,
		}),
	}
}

func TestSuggestSlotsFallbackWrapsComputedSlots(t *testing.T) {
	svc := newService(failingGateway{}, workingMonday("09:00:00", "12:00:00"))

	suggestions, err := svc.SuggestSlots(context.Background(), models.SlotQuery{
		ProviderID:      "prov-1",
		PreferredDate:   "2026-03-02",
		DurationMinutes: 60,
	})

	require.NoError(t, err, "agent failure must not surface as an error")
	assert.True(t, suggestions.Fallback)
	require.Len(t, suggestions.SuggestedSlots, 5)
	assert.Equal(t, mondayAt(9, 0), suggestions.SuggestedSlots[0].StartDatetime)
	assert.Equal(t, 0.8, suggestions.SuggestedSlots[0].Confidence)
}

func TestSuggestSlotsAgentResponseParsed(t *testing.T) {
	agentJSON := `{"suggested_slots": [
		{"start_datetime": "2026-03-02T09:00:00", "end_datetime": "2026-03-02T10:00:00",
		 "confidence": 0.95, "reasoning": "matches preferred morning window", "conflicts": []}
	], "alternatives": [], "recommendations": "book early"}`
	svc := newService(fixedGateway{response: agentJSON}, workingMonday("09:00:00", "12:00:00"))

	suggestions, err := svc.SuggestSlots(context.Background(), models.SlotQuery{
		ProviderID:      "prov-1",
		PreferredDate:   "2026-03-02",
		DurationMinutes: 60,
	})

	require.NoError(t, err)
	assert.False(t, suggestions.Fallback)
	require.Len(t, suggestions.SuggestedSlots, 1)
	assert.Equal(t, 0.95, suggestions.SuggestedSlots[0].Confidence)
	assert.Equal(t, "book early", suggestions.Recommendations)
}

func TestSuggestSlotsEmptyAgentAnswerFallsBack(t *testing.T) {
	// Slots exist but the agent claims none: unparseable, so fall back.
	svc := newService(fixedGateway{response: `{"suggested_slots": []}`}, workingMonday("09:00:00", "12:00:00"))

	suggestions, err := svc.SuggestSlots(context.Background(), models.SlotQuery{
		ProviderID:      "prov-1",
		PreferredDate:   "2026-03-02",
		DurationMinutes: 60,
	})

	require.NoError(t, err)
	assert.True(t, suggestions.Fallback)
	assert.NotEmpty(t, suggestions.SuggestedSlots)
}

func TestSuggestSlotsInvalidDate(t *testing.T) {
	svc := newService(failingGateway{}, nil)

	_, err := svc.SuggestSlots(context.Background(), models.SlotQuery{
		ProviderID:    "prov-1",
		PreferredDate: "02-03-2026",
	})

	assert.Error(t, err)
}
