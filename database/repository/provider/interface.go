package providerRepo

import (
	"context"
	"errors"

	"karigar/models"
)

// ErrNotFound is returned when no provider matches the given ID.
var ErrNotFound = errors.New("provider not found")

// SearchCriteria defines a geospatial provider search. An empty Category
// matches any approved provider in range.
type SearchCriteria struct {
	Category      string
	LocationGeo   models.GeoPoint
	MaxDistanceKm float64
	Limit         int
}

// NearbyProvider is a provider with the distance computed by the search.
type NearbyProvider struct {
	models.Provider `bson:",inline"`
	DistanceMeters  float64 `bson:"distance"`
}

// ProviderRepository defines provider data access.
type ProviderRepository interface {
	Create(ctx context.Context, provider *models.Provider) error
	GetByID(ctx context.Context, id string) (*models.Provider, error)

	// SearchNearby returns approved providers offering an active service in
	// the requested category within the search radius, nearest first.
	SearchNearby(ctx context.Context, criteria SearchCriteria) ([]NearbyProvider, error)

	// UpdateCompletionRate overwrites the provider's denormalized completion
	// rate (a percentage).
	UpdateCompletionRate(ctx context.Context, id string, rate float64) error

	// UpdateRating overwrites the provider's denormalized review rating
	// aggregate.
	UpdateRating(ctx context.Context, id string, average float64, count int) error
}
