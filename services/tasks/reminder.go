package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TypeSendReminder is the asynq task type for booking reminders.
const TypeSendReminder = "reminder:send"

// reminderLeadTime is how long before the scheduled start the reminder fires.
const reminderLeadTime = time.Hour

// ReminderPayload is the serialized body of a reminder task.
type ReminderPayload struct {
	BookingID   string    `json:"booking_id"`
	CustomerID  string    `json:"customer_id"`
	ProviderID  string    `json:"provider_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ReminderScheduler enqueues a reminder for a scheduled booking. A nil
// scheduler is valid and disables reminders.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, payload ReminderPayload) error
}

// AsynqReminderScheduler enqueues reminder tasks on an asynq queue backed by
// Redis, timed to fire one hour before the booking's scheduled start.
type AsynqReminderScheduler struct {
	Client *asynq.Client
}

func NewAsynqReminderScheduler(client *asynq.Client) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{Client: client}
}

func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, payload ReminderPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	fireAt := payload.ScheduledAt.Add(-reminderLeadTime)
	opts := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("reminder:%s", payload.BookingID)),
		asynq.MaxRetry(3),
	}
	if fireAt.After(time.Now()) {
		opts = append(opts, asynq.ProcessAt(fireAt))
	}

	task := asynq.NewTask(TypeSendReminder, body)
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", payload.BookingID, err)
	}
	return nil
}
