package bookingRepo

import (
	"context"
	"errors"
	"time"

	"karigar/models"
)

// ErrNotFound is returned when no booking matches the given ID.
var ErrNotFound = errors.New("booking not found")

// ErrStatusConflict is returned when a conditional status update finds the
// booking in a different state than required. The caller should re-fetch and
// re-validate before retrying.
var ErrStatusConflict = errors.New("booking status conflict")

// StatusUpdate carries the fields written alongside a status transition.
// Nil/zero fields are left untouched.
type StatusUpdate struct {
	ScheduledDatetime  *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancelledBy        models.CancelActor
	CancellationReason string
	FinalPrice         *float64
}

// BookingRepository defines booking data access. Status transitions go
// through UpdateStatusIf, a single atomic compare-and-set against the
// persisted status field.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// UpdateStatusIf atomically moves the booking from one of the expected
	// statuses to the target status, applying update in the same write. It
	// returns ErrStatusConflict when the booking exists but its status no
	// longer matches, and ErrNotFound when it does not exist at all.
	UpdateStatusIf(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, update StatusUpdate) (*models.Booking, error)

	// ActiveForProvider returns the provider's bookings in a schedule-blocking
	// state (accepted, scheduled, in_progress).
	ActiveForProvider(ctx context.Context, providerID string) ([]models.Booking, error)

	// CompletedForCustomer returns the customer's most recent completed
	// bookings, newest first.
	CompletedForCustomer(ctx context.Context, customerID string, limit int) ([]models.Booking, error)

	// CountByStatuses returns per-status booking counts for a provider.
	CountByStatuses(ctx context.Context, providerID string, statuses []models.BookingStatus) (map[models.BookingStatus]int, error)

	// AvgCompletedPrice returns the average final price of the provider's
	// completed bookings, or 0 when there are none.
	AvgCompletedPrice(ctx context.Context, providerID string) (float64, error)

	// AvgCompletedPriceByCategory returns the market average final price for
	// completed bookings in a service category, or 0 when there are none.
	AvgCompletedPriceByCategory(ctx context.Context, category string) (float64, error)
}
