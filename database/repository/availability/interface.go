package availabilityRepo

import (
	"context"
	"time"

	"karigar/models"
)

// AvailabilityRepository manages a provider's weekly recurring schedule and
// time-off exceptions. Both are provider-owned administrative data, mutated
// rarely and read by the slot calculator.
type AvailabilityRepository interface {
	// ReplaceWeekly replaces the provider's entire weekly schedule
	// (delete-all-then-insert).
	ReplaceWeekly(ctx context.Context, providerID string, entries []models.ProviderAvailability) error

	// GetWeekly returns the provider's recurring availability records.
	GetWeekly(ctx context.Context, providerID string) ([]models.ProviderAvailability, error)

	AddTimeOff(ctx context.Context, timeOff *models.ProviderTimeOff) error
	DeleteTimeOff(ctx context.Context, providerID, timeOffID string) error

	// TimeOffOverlapping returns time-off intervals intersecting [from, to).
	TimeOffOverlapping(ctx context.Context, providerID string, from, to time.Time) ([]models.ProviderTimeOff, error)
}
