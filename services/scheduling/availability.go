package scheduling

import (
	"fmt"
	"time"

	"karigar/models"
)

// slotStepMinutes is the cursor increment between candidate slot starts.
const slotStepMinutes = 30

// ComputeSlots computes the bookable windows of the requested duration for a
// provider on one calendar date, given the weekly recurring schedule, the
// provider's schedule-blocking bookings and time-off exceptions.
//
// A date with no recurring entry, or one marked unavailable, yields an empty
// result: the provider does not work that day. A duration longer than the
// open interval also yields an empty result, not an error.
func ComputeSlots(
	weekly []models.ProviderAvailability,
	bookings []models.Booking,
	timeOff []models.ProviderTimeOff,
	date time.Time,
	durationMinutes int,
) ([]models.Slot, error) {
	if durationMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive, got %d", durationMinutes)
	}

	day := int(date.Weekday())
	var dayEntry *models.ProviderAvailability
	for i := range weekly {
		if weekly[i].DayOfWeek == day {
			dayEntry = &weekly[i]
			break
		}
	}
	if dayEntry == nil || !dayEntry.IsAvailable {
		return []models.Slot{}, nil
	}

	openStart, err := combineClock(date, dayEntry.StartTime)
	if err != nil {
		return nil, fmt.Errorf("invalid availability start time %q: %w", dayEntry.StartTime, err)
	}
	openEnd, err := combineClock(date, dayEntry.EndTime)
	if err != nil {
		return nil, fmt.Errorf("invalid availability end time %q: %w", dayEntry.EndTime, err)
	}

	duration := time.Duration(durationMinutes) * time.Minute
	slots := []models.Slot{}

	for cursor := openStart; !cursor.Add(duration).After(openEnd); cursor = cursor.Add(slotStepMinutes * time.Minute) {
		candidate := models.Slot{Start: cursor, End: cursor.Add(duration)}
		if conflictsWithBookings(candidate, bookings, durationMinutes) {
			continue
		}
		if conflictsWithTimeOff(candidate, timeOff) {
			continue
		}
		slots = append(slots, candidate)
	}
	return slots, nil
}

func conflictsWithBookings(candidate models.Slot, bookings []models.Booking, defaultDurationMinutes int) bool {
	for _, b := range bookings {
		if b.ScheduledDatetime == nil {
			continue
		}
		minutes := b.EstimatedDurationMinutes
		if minutes <= 0 {
			minutes = defaultDurationMinutes
		}
		bookingStart := *b.ScheduledDatetime
		bookingEnd := bookingStart.Add(time.Duration(minutes) * time.Minute)

		// Two intervals overlap unless one entirely precedes the other.
		if !(candidate.End.Before(bookingStart) || candidate.End.Equal(bookingStart) ||
			candidate.Start.After(bookingEnd) || candidate.Start.Equal(bookingEnd)) {
			return true
		}
	}
	return false
}

func conflictsWithTimeOff(candidate models.Slot, timeOff []models.ProviderTimeOff) bool {
	for _, off := range timeOff {
		if !(candidate.End.Before(off.StartDatetime) || candidate.End.Equal(off.StartDatetime) ||
			candidate.Start.After(off.EndDatetime) || candidate.Start.Equal(off.EndDatetime)) {
			return true
		}
	}
	return false
}

// combineClock anchors an "HH:MM:SS" (or "HH:MM") clock string onto a date.
func combineClock(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04:05", clock)
	if err != nil {
		t, err = time.Parse("15:04", clock)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, date.Location()), nil
}
