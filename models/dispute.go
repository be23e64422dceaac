package models

import "time"

// DisputeStatus is the handling state of a dispute.
type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeEscalated   DisputeStatus = "escalated"
)

// Dispute is a side record raised against a booking. At most one dispute
// exists per booking.
type Dispute struct {
	ID          string        `bson:"id" json:"id"`
	BookingID   string        `bson:"booking_id" json:"booking_id"`
	RaisedBy    string        `bson:"raised_by" json:"raised_by"`
	DisputeType string        `bson:"dispute_type" json:"dispute_type"` // service_quality, pricing, no_show, damage, other
	Description string        `bson:"description" json:"description"`
	Status      DisputeStatus `bson:"status" json:"status"`
	Resolution  string        `bson:"resolution,omitempty" json:"resolution,omitempty"`
	ResolvedAt  *time.Time    `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at"`
}
