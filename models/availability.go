package models

import "time"

// ProviderAvailability is one weekly recurring open interval for a provider.
// Times are stored as "HH:MM:SS" strings; DayOfWeek follows time.Weekday
// (0=Sunday .. 6=Saturday).
type ProviderAvailability struct {
	ID          string    `bson:"id" json:"id"`
	ProviderID  string    `bson:"provider_id" json:"provider_id"`
	DayOfWeek   int       `bson:"day_of_week" json:"day_of_week"`
	StartTime   string    `bson:"start_time" json:"start_time"`
	EndTime     string    `bson:"end_time" json:"end_time"`
	IsAvailable bool      `bson:"is_available" json:"is_available"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// ProviderTimeOff is an explicit exception interval overriding the recurring
// schedule for its span.
type ProviderTimeOff struct {
	ID            string    `bson:"id" json:"id"`
	ProviderID    string    `bson:"provider_id" json:"provider_id"`
	StartDatetime time.Time `bson:"start_datetime" json:"start_datetime"`
	EndDatetime   time.Time `bson:"end_datetime" json:"end_datetime"`
	Reason        string    `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}

// WeeklySchedule is the payload for a wholesale weekly availability replace.
type WeeklySchedule struct {
	Entries []WeeklyScheduleEntry `json:"entries" binding:"required"`
}

// WeeklyScheduleEntry is one day's open interval in a submitted schedule.
type WeeklyScheduleEntry struct {
	DayOfWeek   int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime   string `json:"start_time" binding:"required"`
	EndTime     string `json:"end_time" binding:"required"`
	IsAvailable bool   `json:"is_available"`
}
