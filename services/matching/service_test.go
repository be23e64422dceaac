package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingRepo "karigar/database/repository/booking"
	providerRepo "karigar/database/repository/provider"
	"karigar/models"
	"karigar/services/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProviderRepo struct {
	nearby []providerRepo.NearbyProvider
}

func (r *stubProviderRepo) Create(ctx context.Context, provider *models.Provider) error {
	return nil
}

func (r *stubProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	return nil, providerRepo.ErrNotFound
}

func (r *stubProviderRepo) SearchNearby(ctx context.Context, criteria providerRepo.SearchCriteria) ([]providerRepo.NearbyProvider, error) {
	return r.nearby, nil
}

func (r *stubProviderRepo) UpdateCompletionRate(ctx context.Context, id string, rate float64) error {
	return nil
}

func (r *stubProviderRepo) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	return nil
}

type stubBookingRepo struct {
	avgPrices map[string]float64
}

func (r *stubBookingRepo) Create(ctx context.Context, booking *models.Booking) error { return nil }

func (r *stubBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}

func (r *stubBookingRepo) UpdateStatusIf(ctx context.Context, id string, from []models.BookingStatus, to models.BookingStatus, update bookingRepo.StatusUpdate) (*models.Booking, error) {
	return nil, bookingRepo.ErrNotFound
}

func (r *stubBookingRepo) ActiveForProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	return nil, nil
}

func (r *stubBookingRepo) CompletedForCustomer(ctx context.Context, customerID string, limit int) ([]models.Booking, error) {
	return nil, nil
}

func (r *stubBookingRepo) CountByStatuses(ctx context.Context, providerID string, statuses []models.BookingStatus) (map[models.BookingStatus]int, error) {
	return map[models.BookingStatus]int{}, nil
}

func (r *stubBookingRepo) AvgCompletedPrice(ctx context.Context, providerID string) (float64, error) {
	return r.avgPrices[providerID], nil
}

func (r *stubBookingRepo) AvgCompletedPriceByCategory(ctx context.Context, category string) (float64, error) {
	return 0, nil
}

type failingGateway struct{}

func (failingGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return "", errors.New("model unavailable")
}

type fixedGateway struct{ response string }

func (g fixedGateway) Generate(ctx context.Context, prompt string) (string, error) {
	return g.response, nil
}

func testInvoker(gw agent.Gateway) *agent.Invoker {
	return agent.NewInvoker(gw, nil, agent.Options{
		Timeout:          time.Second,
		MaxAttempts:      1,
		BreakerThreshold: 5,
		BreakerCoolOff:   time.Minute,
	})
}

func nearbyProvider(id, name, category string, km, rating, completionRate, basePrice float64) providerRepo.NearbyProvider {
	return providerRepo.NearbyProvider{
		Provider: models.Provider{
			ID:             id,
			BusinessName:   name,
			Status:         models.ProviderApproved,
			RatingAverage:  rating,
			CompletionRate: completionRate,
			Services: []models.Service{
				{ID: "svc-" + id, Category: category, BasePrice: basePrice, IsActive: true},
			},
		},
		DistanceMeters: km * 1000,
	}
}

func TestMatchProvidersEmptyCandidateSet(t *testing.T) {
	svc := &DefaultMatchingService{
		ProviderRepo: &stubProviderRepo{},
		BookingRepo:  &stubBookingRepo{},
		Invoker:      testInvoker(failingGateway{}),
	}

	result, err := svc.MatchProviders(context.Background(), models.MatchRequest{
		Category: "plumbing", Latitude: 12.97, Longitude: 77.59,
	})

	require.NoError(t, err, "zero candidates is an empty result, not an error")
	assert.Empty(t, result.Matches)
}

func TestMatchProvidersFallbackOnAgentFailure(t *testing.T) {
	repo := &stubProviderRepo{nearby: []providerRepo.NearbyProvider{
		nearbyProvider("p1", "Sharma Plumbing", "plumbing", 3, 4.5, 90, 500),
		nearbyProvider("p2", "Verma Pipes", "plumbing", 12, 3.5, 75, 400),
	}}
	svc := &DefaultMatchingService{
		ProviderRepo: repo,
		BookingRepo:  &stubBookingRepo{avgPrices: map[string]float64{"p1": 650}},
		Invoker:      testInvoker(failingGateway{}),
	}

	result, err := svc.MatchProviders(context.Background(), models.MatchRequest{
		Category: "plumbing", Latitude: 12.97, Longitude: 77.59,
	})

	require.NoError(t, err)
	assert.True(t, result.Fallback)
	require.Len(t, result.Matches, 2)

	// 50 + (4.5-3)*10 + 20 + (90-80)*0.2 = 87
	assert.Equal(t, "p1", result.Matches[0].ProviderID)
	assert.InDelta(t, 87.0, result.Matches[0].MatchScore, 1e-9)
	// 50 + 5 + 0 - 1 = 54
	assert.Equal(t, "p2", result.Matches[1].ProviderID)
	assert.InDelta(t, 54.0, result.Matches[1].MatchScore, 1e-9)

	require.NotNil(t, result.Matches[0].Provider)
	assert.Equal(t, 650.0, result.Matches[0].Provider.AvgPrice, "avg completed price enriches the candidate")
	assert.Equal(t, 400.0, result.Matches[1].Provider.AvgPrice, "base price stands in when no completions exist")
}

func TestMatchProvidersAgentRankingReassociated(t *testing.T) {
	repo := &stubProviderRepo{nearby: []providerRepo.NearbyProvider{
		nearbyProvider("p1", "Sharma Plumbing", "plumbing", 3, 4.5, 90, 500),
		nearbyProvider("p2", "Verma Pipes", "plumbing", 12, 3.5, 75, 400),
	}}
	agentJSON := `{"matches": [
		{"provider_id": "p2", "match_score": 91, "reasoning": "budget fit", "strengths": ["price"], "concerns": []},
		{"provider_id": "p1", "match_score": 72, "reasoning": "further away", "strengths": [], "concerns": ["distance"]},
		{"provider_id": "ghost", "match_score": 99, "reasoning": "hallucinated", "strengths": [], "concerns": []}
	], "summary": "two viable providers"}`

	svc := &DefaultMatchingService{
		ProviderRepo: repo,
		BookingRepo:  &stubBookingRepo{},
		Invoker:      testInvoker(fixedGateway{response: agentJSON}),
	}

	result, err := svc.MatchProviders(context.Background(), models.MatchRequest{
		Category: "plumbing", Latitude: 12.97, Longitude: 77.59,
	})

	require.NoError(t, err)
	assert.False(t, result.Fallback)
	require.Len(t, result.Matches, 2, "entries referencing unknown providers are dropped")
	assert.Equal(t, "p2", result.Matches[0].ProviderID)
	assert.Equal(t, 91.0, result.Matches[0].MatchScore)
	require.NotNil(t, result.Matches[0].Provider, "ranking is re-associated with candidate data")
	assert.Equal(t, "Verma Pipes", result.Matches[0].Provider.Name)
	assert.Equal(t, "two viable providers", result.Summary)
}
