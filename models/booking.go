package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusRequested  BookingStatus = "requested"
	StatusAccepted   BookingStatus = "accepted"
	StatusScheduled  BookingStatus = "scheduled"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusDisputed   BookingStatus = "disputed"
)

// Terminal reports whether no further lifecycle transitions are possible.
func (s BookingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusDisputed
}

// ActiveStatuses are the states in which a booking occupies the provider's
// schedule and blocks overlapping slots.
var ActiveStatuses = []BookingStatus{StatusAccepted, StatusScheduled, StatusInProgress}

// CancelActor identifies who cancelled a booking.
type CancelActor string

const (
	CancelledByCustomer CancelActor = "customer"
	CancelledByProvider CancelActor = "provider"
	CancelledByAdmin    CancelActor = "admin"
)

// PaymentStatus tracks the (mocked) payment state of a booking.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Booking represents one service engagement between a customer and a provider.
type Booking struct {
	ID         string `bson:"id" json:"id"`
	CustomerID string `bson:"customer_id" json:"customer_id"`
	ProviderID string `bson:"provider_id" json:"provider_id"`
	ServiceID  string `bson:"service_id" json:"service_id"`
	Category   string `bson:"category,omitempty" json:"category,omitempty"`

	Status BookingStatus `bson:"status" json:"status"`

	RequestDescription string   `bson:"request_description" json:"request_description"`
	ServiceAddress     string   `bson:"service_address" json:"service_address"`
	ServiceLocation    GeoPoint `bson:"service_location,omitempty" json:"service_location,omitzero"`

	PreferredDate      string `bson:"preferred_date,omitempty" json:"preferred_date,omitempty"` // "2006-01-02"
	PreferredTimeStart string `bson:"preferred_time_start,omitempty" json:"preferred_time_start,omitempty"`
	PreferredTimeEnd   string `bson:"preferred_time_end,omitempty" json:"preferred_time_end,omitempty"`

	ScheduledDatetime        *time.Time `bson:"scheduled_datetime,omitempty" json:"scheduled_datetime,omitempty"`
	EstimatedDurationMinutes int        `bson:"estimated_duration_minutes,omitempty" json:"estimated_duration_minutes,omitempty"`

	QuotedPrice   float64       `bson:"quoted_price,omitempty" json:"quoted_price,omitempty"`
	FinalPrice    float64       `bson:"final_price,omitempty" json:"final_price,omitempty"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"payment_status"`

	CancellationReason string      `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CancelledBy        CancelActor `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time  `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CompletedAt        *time.Time  `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	AIMatchScore     float64 `bson:"ai_match_score,omitempty" json:"ai_match_score,omitempty"`
	AIMatchReasoning string  `bson:"ai_match_reasoning,omitempty" json:"ai_match_reasoning,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BookingRequest is the payload for creating a booking request.
type BookingRequest struct {
	CustomerID         string   `json:"customer_id" binding:"required"`
	ProviderID         string   `json:"provider_id"` // empty means "match one for me"
	ServiceID          string   `json:"service_id" binding:"required"`
	Category           string   `json:"category"`
	RequestDescription string   `json:"request_description" binding:"required"`
	ServiceAddress     string   `json:"service_address" binding:"required"`
	ServiceLatitude    float64  `json:"service_latitude"`
	ServiceLongitude   float64  `json:"service_longitude"`
	PreferredDate      string   `json:"preferred_date"`
	PreferredTimeStart string   `json:"preferred_time_start"`
	PreferredTimeEnd   string   `json:"preferred_time_end"`
	Budget             *float64 `json:"budget"`
}
