package models

import "time"

// ProviderStatus is the onboarding state of a provider.
type ProviderStatus string

const (
	ProviderPending   ProviderStatus = "pending"
	ProviderApproved  ProviderStatus = "approved"
	ProviderSuspended ProviderStatus = "suspended"
	ProviderRejected  ProviderStatus = "rejected"
)

// Service is one offering in a provider's catalogue.
type Service struct {
	ID              string  `bson:"id" json:"id"`
	Category        string  `bson:"category" json:"category"`
	Title           string  `bson:"title" json:"title"`
	Description     string  `bson:"description,omitempty" json:"description,omitempty"`
	BasePrice       float64 `bson:"base_price" json:"base_price"`
	PriceUnit       string  `bson:"price_unit" json:"price_unit"` // "fixed", "hourly", "daily"
	DurationMinutes int     `bson:"duration_minutes,omitempty" json:"duration_minutes,omitempty"`
	IsActive        bool    `bson:"is_active" json:"is_active"`
}

// Provider is a service provider profile with its embedded catalogue.
type Provider struct {
	ID                  string         `bson:"id" json:"id"`
	UserID              string         `bson:"user_id" json:"user_id"`
	BusinessName        string         `bson:"business_name" json:"business_name"`
	FullName            string         `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Bio                 string         `bson:"bio,omitempty" json:"bio,omitempty"`
	Address             string         `bson:"address,omitempty" json:"address,omitempty"`
	LocationGeo         GeoPoint       `bson:"location_geo" json:"location_geo"`
	City                string         `bson:"city,omitempty" json:"city,omitempty"`
	ServiceRadiusKm     int            `bson:"service_radius_km,omitempty" json:"service_radius_km,omitempty"`
	RatingAverage       float64        `bson:"rating_average" json:"rating_average"`
	RatingCount         int            `bson:"rating_count" json:"rating_count"`
	TotalBookings       int            `bson:"total_bookings" json:"total_bookings"`
	CompletionRate      float64        `bson:"completion_rate" json:"completion_rate"` // percentage, 0-100
	ResponseTimeMinutes int            `bson:"response_time_minutes,omitempty" json:"response_time_minutes,omitempty"`
	Status              ProviderStatus `bson:"status" json:"status"`
	Services            []Service      `bson:"services,omitempty" json:"services,omitempty"`
	CreatedAt           time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time      `bson:"updated_at" json:"updated_at"`
}

// ServiceByID returns the catalogue entry with the given ID, if present.
func (p *Provider) ServiceByID(id string) *Service {
	for i := range p.Services {
		if p.Services[i].ID == id {
			return &p.Services[i]
		}
	}
	return nil
}
