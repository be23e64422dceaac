package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "karigar/database/repository/booking"
	disputeRepo "karigar/database/repository/dispute"
	providerRepo "karigar/database/repository/provider"
	"karigar/models"
	"karigar/services/matching"
	"karigar/services/notification"
	"karigar/services/scheduling"
	"karigar/services/tasks"
	"karigar/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LifecycleConfig tunes the booking state machine.
type LifecycleConfig struct {
	// DisputeFrom lists the statuses a dispute may be raised from.
	DisputeFrom []models.BookingStatus
}

// DefaultLifecycleConfig allows disputes from every state except cancelled.
func DefaultLifecycleConfig() LifecycleConfig {
	return LifecycleConfig{
		DisputeFrom: []models.BookingStatus{
			models.StatusRequested,
			models.StatusAccepted,
			models.StatusScheduled,
			models.StatusInProgress,
			models.StatusCompleted,
		},
	}
}

// BookingService drives the booking lifecycle. Every transition is guarded:
// it either moves the booking atomically from a permitted status to the
// target status, or fails without mutating anything.
type BookingService interface {
	// Request creates a booking in the requested state. When the request
	// names no provider, matching picks the best candidate; zero candidates
	// yield ErrNoMatchingProviders.
	Request(ctx context.Context, req models.BookingRequest) (*models.Booking, error)

	GetByID(ctx context.Context, id string) (*models.Booking, error)

	// Accept moves requested -> accepted.
	Accept(ctx context.Context, bookingID, providerID string) (*models.Booking, error)

	// Reject moves requested -> cancelled on behalf of the provider.
	Reject(ctx context.Context, bookingID, providerID, reason string) (*models.Booking, error)

	// Schedule moves accepted -> scheduled. The chosen datetime must be the
	// start of a currently bookable slot.
	Schedule(ctx context.Context, bookingID string, datetime time.Time) (*models.Booking, error)

	// Start moves scheduled -> in_progress.
	Start(ctx context.Context, bookingID, providerID string) (*models.Booking, error)

	// Complete moves in_progress -> completed, records the final price and
	// refreshes the provider's completion rate.
	Complete(ctx context.Context, bookingID, providerID string, finalPrice float64) (*models.Booking, error)

	// Cancel moves any pre-terminal state to cancelled, recording who
	// cancelled and why.
	Cancel(ctx context.Context, bookingID string, actor models.CancelActor, reason string) (*models.Booking, error)

	// RaiseDispute creates the booking's dispute record and moves the
	// booking to disputed. At most one dispute per booking.
	RaiseDispute(ctx context.Context, bookingID, raisedBy, disputeType, description string) (*models.Dispute, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	BookingRepo  bookingRepo.BookingRepository
	ProviderRepo providerRepo.ProviderRepository
	DisputeRepo  disputeRepo.DisputeRepository

	Matching     matching.MatchingService
	Scheduling   scheduling.SchedulingService
	Notification notification.NotificationService
	Reminders    tasks.ReminderScheduler

	Config LifecycleConfig
}

func (s *DefaultBookingService) Request(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	providerID := req.ProviderID
	matchScore, matchReasoning := 0.0, ""

	if providerID == "" {
		result, err := s.Matching.MatchProviders(ctx, models.MatchRequest{
			Category:      req.Category,
			Latitude:      req.ServiceLatitude,
			Longitude:     req.ServiceLongitude,
			PreferredDate: req.PreferredDate,
			PreferredTime: req.PreferredTimeStart,
			Budget:        req.Budget,
		})
		if err != nil {
			return nil, err
		}
		if len(result.Matches) == 0 {
			return nil, ErrNoMatchingProviders
		}
		best := result.Matches[0]
		providerID = best.ProviderID
		matchScore = best.MatchScore
		matchReasoning = best.Reasoning
	}

	provider, err := s.ProviderRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}

	service := provider.ServiceByID(req.ServiceID)
	if service == nil || !service.IsActive {
		return nil, newGuardError("request", "provider does not offer service %s", req.ServiceID)
	}
	category := req.Category
	if category == "" {
		category = service.Category
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		ID:                       uuid.New().String(),
		CustomerID:               req.CustomerID,
		ProviderID:               provider.ID,
		ServiceID:                service.ID,
		Category:                 category,
		Status:                   models.StatusRequested,
		RequestDescription:       req.RequestDescription,
		ServiceAddress:           req.ServiceAddress,
		PreferredDate:            req.PreferredDate,
		PreferredTimeStart:       req.PreferredTimeStart,
		PreferredTimeEnd:         req.PreferredTimeEnd,
		EstimatedDurationMinutes: service.DurationMinutes,
		QuotedPrice:              service.BasePrice,
		PaymentStatus:            models.PaymentPending,
		AIMatchScore:             matchScore,
		AIMatchReasoning:         matchReasoning,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	if req.ServiceLatitude != 0 || req.ServiceLongitude != 0 {
		booking.ServiceLocation = models.NewGeoPoint(req.ServiceLatitude, req.ServiceLongitude)
	}

	if err := s.BookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.notifyProvider(ctx, booking, "booking_request", "New booking request",
		"You have a new booking request for "+category)
	return booking, nil
}

func (s *DefaultBookingService) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return s.BookingRepo.GetByID(ctx, id)
}

func (s *DefaultBookingService) Accept(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	if err := s.checkOwnership(ctx, bookingID, providerID); err != nil {
		return nil, err
	}

	booking, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		[]models.BookingStatus{models.StatusRequested}, models.StatusAccepted,
		bookingRepo.StatusUpdate{})
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, booking, "booking_accepted", "Booking accepted",
		"Your booking request was accepted. Pick a time to schedule it.")
	return booking, nil
}

func (s *DefaultBookingService) Reject(ctx context.Context, bookingID, providerID, reason string) (*models.Booking, error) {
	if err := s.checkOwnership(ctx, bookingID, providerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	booking, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		[]models.BookingStatus{models.StatusRequested}, models.StatusCancelled,
		bookingRepo.StatusUpdate{
			CancelledAt:        &now,
			CancelledBy:        models.CancelledByProvider,
			CancellationReason: reason,
		})
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, booking, "booking_rejected", "Booking declined",
		"The provider declined your booking request.")
	return booking, nil
}

func (s *DefaultBookingService) Schedule(ctx context.Context, bookingID string, datetime time.Time) (*models.Booking, error) {
	current, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusAccepted {
		return nil, newGuardError("schedule", "booking is %s, not accepted", current.Status)
	}

	slots, err := s.Scheduling.ComputeSlots(ctx, current.ProviderID, datetime, current.EstimatedDurationMinutes)
	if err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, newGuardError("schedule", "provider has no availability on %s", datetime.Format("2006-01-02"))
	}
	bookable := false
	for _, slot := range slots {
		if slot.Start.Equal(datetime) {
			bookable = true
			break
		}
	}
	if !bookable {
		return nil, newGuardError("schedule", "%s is not an available slot", datetime.Format(time.RFC3339))
	}

	booking, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		[]models.BookingStatus{models.StatusAccepted}, models.StatusScheduled,
		bookingRepo.StatusUpdate{ScheduledDatetime: &datetime})
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, booking, "booking_scheduled", "Booking scheduled",
		"Your booking is scheduled for "+datetime.Format("Jan 2 at 15:04"))
	s.notifyProvider(ctx, booking, "booking_scheduled", "Booking scheduled",
		"A booking was scheduled for "+datetime.Format("Jan 2 at 15:04"))

	if s.Reminders != nil {
		err := s.Reminders.ScheduleReminder(ctx, tasks.ReminderPayload{
			BookingID:   booking.ID,
			CustomerID:  booking.CustomerID,
			ProviderID:  booking.ProviderID,
			ScheduledAt: datetime,
		})
		if err != nil {
			utils.GetLogger().Warn("booking: failed to enqueue reminder",
				zap.String("bookingID", booking.ID), zap.Error(err))
		}
	}
	return booking, nil
}

func (s *DefaultBookingService) Start(ctx context.Context, bookingID, providerID string) (*models.Booking, error) {
	if err := s.checkOwnership(ctx, bookingID, providerID); err != nil {
		return nil, err
	}

	booking, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		[]models.BookingStatus{models.StatusScheduled}, models.StatusInProgress,
		bookingRepo.StatusUpdate{})
	if err != nil {
		return nil, err
	}

	s.notifyCustomer(ctx, booking, "booking_started", "Service started",
		"Your provider has started the service.")
	return booking, nil
}

func (s *DefaultBookingService) Complete(ctx context.Context, bookingID, providerID string, finalPrice float64) (*models.Booking, error) {
	if err := s.checkOwnership(ctx, bookingID, providerID); err != nil {
		return nil, err
	}

	current, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if finalPrice <= 0 {
		finalPrice = current.QuotedPrice
	}

	now := time.Now().UTC()
	booking, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		[]models.BookingStatus{models.StatusInProgress}, models.StatusCompleted,
		bookingRepo.StatusUpdate{
			CompletedAt: &now,
			FinalPrice:  &finalPrice,
		})
	if err != nil {
		return nil, err
	}

	s.refreshCompletionRate(ctx, booking.ProviderID)
	s.notifyCustomer(ctx, booking, "booking_completed", "Service completed",
		"Your booking is complete. Please rate your provider.")
	return booking, nil
}

func (s *DefaultBookingService) Cancel(ctx context.Context, bookingID string, actor models.CancelActor, reason string) (*models.Booking, error) {
	now := time.Now().UTC()
	booking, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		[]models.BookingStatus{
			models.StatusRequested,
			models.StatusAccepted,
			models.StatusScheduled,
			models.StatusInProgress,
		},
		models.StatusCancelled,
		bookingRepo.StatusUpdate{
			CancelledAt:        &now,
			CancelledBy:        actor,
			CancellationReason: reason,
		})
	if err != nil {
		return nil, err
	}

	if actor == models.CancelledByCustomer {
		s.notifyProvider(ctx, booking, "booking_cancelled", "Booking cancelled",
			"The customer cancelled the booking.")
	} else {
		s.notifyCustomer(ctx, booking, "booking_cancelled", "Booking cancelled",
			"Your booking was cancelled.")
	}
	return booking, nil
}

func (s *DefaultBookingService) RaiseDispute(ctx context.Context, bookingID, raisedBy, disputeType, description string) (*models.Dispute, error) {
	current, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !statusIn(current.Status, s.disputeFrom()) {
		return nil, newGuardError("dispute", "booking is %s; disputes are not allowed from that state", current.Status)
	}

	exists, err := s.DisputeRepo.ExistsForBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, newGuardError("dispute", "a dispute already exists for booking %s", bookingID)
	}

	now := time.Now().UTC()
	dispute := &models.Dispute{
		ID:          uuid.New().String(),
		BookingID:   bookingID,
		RaisedBy:    raisedBy,
		DisputeType: disputeType,
		Description: description,
		Status:      models.DisputeOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.DisputeRepo.Create(ctx, dispute); err != nil {
		if errors.Is(err, disputeRepo.ErrAlreadyExists) {
			return nil, newGuardError("dispute", "a dispute already exists for booking %s", bookingID)
		}
		return nil, err
	}

	booking, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		s.disputeFrom(), models.StatusDisputed, bookingRepo.StatusUpdate{})
	if err != nil {
		// The booking raced out of a disputable state after the record was
		// created. Compensate so a failed transition leaves no dispute behind.
		if delErr := s.DisputeRepo.Delete(ctx, dispute.ID); delErr != nil {
			utils.GetLogger().Error("booking: failed to roll back dispute record",
				zap.String("disputeID", dispute.ID),
				zap.String("bookingID", bookingID),
				zap.Error(delErr))
		}
		return nil, err
	}

	if raisedBy == booking.CustomerID {
		s.notifyProvider(ctx, booking, "dispute_raised", "Dispute raised",
			"A dispute was raised against one of your bookings.")
	} else {
		s.notifyCustomer(ctx, booking, "dispute_raised", "Dispute raised",
			"A dispute was raised on your booking.")
	}
	return dispute, nil
}

func (s *DefaultBookingService) disputeFrom() []models.BookingStatus {
	if len(s.Config.DisputeFrom) > 0 {
		return s.Config.DisputeFrom
	}
	return DefaultLifecycleConfig().DisputeFrom
}

// checkOwnership verifies the booking belongs to the acting provider. A
// mismatch surfaces as ErrNotFound so provider IDs cannot be probed.
func (s *DefaultBookingService) checkOwnership(ctx context.Context, bookingID, providerID string) error {
	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if providerID != "" && booking.ProviderID != providerID {
		return ErrNotFound
	}
	return nil
}

// refreshCompletionRate recomputes the provider's denormalized completion
// rate after a completion. Failures are logged; the transition already
// happened and the rate is recomputable.
func (s *DefaultBookingService) refreshCompletionRate(ctx context.Context, providerID string) {
	logger := utils.GetLogger()

	tracked := []models.BookingStatus{
		models.StatusAccepted,
		models.StatusScheduled,
		models.StatusInProgress,
		models.StatusCompleted,
	}
	counts, err := s.BookingRepo.CountByStatuses(ctx, providerID, tracked)
	if err != nil {
		logger.Warn("booking: failed to count statuses for completion rate",
			zap.String("providerID", providerID), zap.Error(err))
		return
	}

	total := 0
	for _, status := range tracked {
		total += counts[status]
	}
	if total == 0 {
		return
	}
	rate := float64(counts[models.StatusCompleted]) / float64(total) * 100

	if err := s.ProviderRepo.UpdateCompletionRate(ctx, providerID, rate); err != nil {
		logger.Warn("booking: failed to update completion rate",
			zap.String("providerID", providerID), zap.Error(err))
	}
}

func (s *DefaultBookingService) notifyCustomer(ctx context.Context, booking *models.Booking, ntype, title, message string) {
	if s.Notification == nil {
		return
	}
	s.Notification.Notify(ctx, booking.CustomerID, ntype, title, message,
		map[string]string{"booking_id": booking.ID})
}

func (s *DefaultBookingService) notifyProvider(ctx context.Context, booking *models.Booking, ntype, title, message string) {
	if s.Notification == nil {
		return
	}
	provider, err := s.ProviderRepo.GetByID(ctx, booking.ProviderID)
	if err != nil {
		utils.GetLogger().Warn("booking: failed to resolve provider for notification",
			zap.String("providerID", booking.ProviderID), zap.Error(err))
		return
	}
	s.Notification.Notify(ctx, provider.UserID, ntype, title, message,
		map[string]string{"booking_id": booking.ID})
}

func statusIn(status models.BookingStatus, set []models.BookingStatus) bool {
	for _, candidate := range set {
		if candidate == status {
			return true
		}
	}
	return false
}
