package recommendation

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

func (r *stubProviderRepo) Create(ctx context.Context, provider *models.Provider) error { return nil }

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
	completed []models.Booking
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
	return r.completed, nil
}

func (r *stubBookingRepo) CountByStatuses(ctx context.Context, providerID string, statuses []models.BookingStatus) (map[models.BookingStatus]int, error) {
	return map[models.BookingStatus]int{}, nil
}

func (r *stubBookingRepo) AvgCompletedPrice(ctx context.Context, providerID string) (float64, error) {
	return 0, nil
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

func nearbyProvider(id string, rating, km float64) providerRepo.NearbyProvider {
	return providerRepo.NearbyProvider{
		Provider: models.Provider{
			ID:            id,
			BusinessName:  "Provider " + id,
			Status:        models.ProviderApproved,
			RatingAverage: rating,
			Services: []models.Service{
				{ID: "svc-" + id, Category: "plumbing", BasePrice: 500, IsActive: true},
			},
		},
		DistanceMeters: km * 1000,
	}
}

func testRequest() models.RecommendationRequest {
	return models.RecommendationRequest{
		CustomerID: "cust-1", Latitude: 12.97, Longitude: 77.59,
	}
}

func TestRecommendEmptyCandidateSet(t *testing.T) {
	svc := &DefaultRecommendationService{
		ProviderRepo: &stubProviderRepo{},
		BookingRepo:  &stubBookingRepo{},
		Invoker:      testInvoker(failingGateway{}),
	}

	result, err := svc.Recommend(context.Background(), testRequest())

	require.NoError(t, err, "zero candidates is an empty result, not an error")
	assert.Empty(t, result.Recommendations)
}

func TestRecommendFallbackOnAgentFailure(t *testing.T) {
	svc := &DefaultRecommendationService{
		ProviderRepo: &stubProviderRepo{nearby: []providerRepo.NearbyProvider{
			nearbyProvider("p1", 4.2, 12),
			nearbyProvider("p2", 4.9, 3),
		}},
		BookingRepo: &stubBookingRepo{},
		Invoker:     testInvoker(failingGateway{}),
	}

	result, err := svc.Recommend(context.Background(), testRequest())

	require.NoError(t, err)
	assert.True(t, result.Fallback)
	require.Len(t, result.Recommendations, 2)
	assert.Equal(t, "p2", result.Recommendations[0].ProviderID, "highest rating first")
	assert.InDelta(t, 0.8, result.Recommendations[0].Confidence, 1e-9)
	assert.InDelta(t, 0.75, result.Recommendations[1].Confidence, 1e-9)
	assert.Contains(t, result.Summary, "Fallback recommendations")
}

func TestRecommendAgentRankingReassociated(t *testing.T) {
	agentJSON := `{"recommendations": [
		{"provider_id": "p1", "confidence": 0.6, "reasoning": "matches past bookings", "match_factors": ["history"]},
		{"provider_id": "p2", "confidence": 0.9, "reasoning": "top rated nearby", "match_factors": ["rating"]},
		{"provider_id": "ghost", "confidence": 0.99, "reasoning": "hallucinated", "match_factors": []}
	], "personalization_insights": {"preferred_categories": ["plumbing"]}, "summary": "two good options"}`
	svc := &DefaultRecommendationService{
		ProviderRepo: &stubProviderRepo{nearby: []providerRepo.NearbyProvider{
			nearbyProvider("p1", 4.2, 12),
			nearbyProvider("p2", 4.9, 3),
		}},
		BookingRepo: &stubBookingRepo{},
		Invoker:     testInvoker(fixedGateway{response: agentJSON}),
	}

	result, err := svc.Recommend(context.Background(), testRequest())

	require.NoError(t, err)
	assert.False(t, result.Fallback)
	require.Len(t, result.Recommendations, 2, "hallucinated providers are dropped")
	assert.Equal(t, "p2", result.Recommendations[0].ProviderID, "sorted by confidence")
	assert.Equal(t, "p1", result.Recommendations[1].ProviderID)
	require.NotNil(t, result.Recommendations[0].Provider)
	assert.Equal(t, []string{"plumbing"}, result.Insights.PreferredCategories)
	assert.Equal(t, "two good options", result.Summary)
}

func TestRecommendAppliesRequestedLimit(t *testing.T) {
	svc := &DefaultRecommendationService{
		ProviderRepo: &stubProviderRepo{nearby: []providerRepo.NearbyProvider{
			nearbyProvider("p1", 4.2, 12),
			nearbyProvider("p2", 4.9, 3),
			nearbyProvider("p3", 4.5, 6),
		}},
		BookingRepo: &stubBookingRepo{},
		Invoker:     testInvoker(failingGateway{}),
	}

	req := testRequest()
	req.Limit = 1
	result, err := svc.Recommend(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "p2", result.Recommendations[0].ProviderID)
}

func TestBuildHistorySummarizesCompletedBookings(t *testing.T) {
	svc := &DefaultRecommendationService{
		ProviderRepo: &stubProviderRepo{},
		BookingRepo: &stubBookingRepo{completed: []models.Booking{
			{Category: "plumbing", FinalPrice: 600},
			{Category: "plumbing", FinalPrice: 800},
			{Category: "cleaning", FinalPrice: 350},
			{Category: "plumbing"},
		}},
		Invoker: testInvoker(failingGateway{}),
	}

	history := svc.buildHistory(context.Background(), "cust-1")

	assert.Equal(t, 4, history.TotalBookings)
	assert.Equal(t, []string{"plumbing", "cleaning"}, history.PreferredCategories,
		"categories ordered by frequency")
	require.NotNil(t, history.PriceRange)
	assert.InDelta(t, 350, history.PriceRange.Min, 1e-9, "zero prices are ignored")
	assert.InDelta(t, 800, history.PriceRange.Max, 1e-9)
}
