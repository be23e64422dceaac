package cron

import (
	"context"
	"encoding/json"
	"time"

	"karigar/config"
	"karigar/services/notification"
	"karigar/services/tasks"
	"karigar/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitReminderWorker runs the reminder worker in the background.
func InitReminderWorker(notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, handleReminderTask(notifSvc))

	go func() {
		logger := utils.GetLogger()
		logger.Info("reminder worker starting")

		const maxAttempts = 5
		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Run(mux)
			if err == nil {
				return
			}
			logger.Error("reminder worker failed to start",
				zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("reminder worker: max retry attempts reached")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

func handleReminderTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p tasks.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("reminder handler: invalid payload", zap.Error(err))
			return err
		}

		logger.Info("sending booking reminder",
			zap.String("bookingID", p.BookingID),
			zap.Time("scheduledAt", p.ScheduledAt))

		notifSvc.Notify(ctx, p.CustomerID, "booking_reminder", "Upcoming booking",
			"Your booking starts at "+p.ScheduledAt.Format("15:04")+".",
			map[string]string{"booking_id": p.BookingID})
		return nil
	}
}
