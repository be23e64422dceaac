package review

import (
	"context"
	"errors"
	"testing"
	"time"

	bookingRepo "karigar/database/repository/booking"
	providerRepo "karigar/database/repository/provider"
	reviewRepo "karigar/database/repository/review"
	"karigar/models"
	"karigar/services/agent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReviewRepo enforces the same one-review-per-booking uniqueness as the
// Mongo repo's unique index.
type fakeReviewRepo struct {
	reviews map[string]*models.Review // keyed by booking ID
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[string]*models.Review)}
}

func (r *fakeReviewRepo) Create(ctx context.Context, review *models.Review) error {
	if _, ok := r.reviews[review.BookingID]; ok {
		return reviewRepo.ErrAlreadyExists
	}
	r.reviews[review.BookingID] = review
	return nil
}

func (r *fakeReviewRepo) GetByID(ctx context.Context, id string) (*models.Review, error) {
	for _, review := range r.reviews {
		if review.ID == id {
			return review, nil
		}
	}
	return nil, reviewRepo.ErrNotFound
}

func (r *fakeReviewRepo) RatingStatsForProvider(ctx context.Context, providerID string) (reviewRepo.RatingStats, error) {
	var sum, count int
	for _, review := range r.reviews {
		if review.ProviderID == providerID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return reviewRepo.RatingStats{}, nil
	}
	return reviewRepo.RatingStats{Average: float64(sum) / float64(count), Count: count}, nil
}

type stubBookingRepo struct {
	bookings map[string]*models.Booking
}

func (r *stubBookingRepo) Create(ctx context.Context, booking *models.Booking) error { return nil }

func (r *stubBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copied := *b
	return &copied, nil
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
	return 0, nil
}

func (r *stubBookingRepo) AvgCompletedPriceByCategory(ctx context.Context, category string) (float64, error) {
	return 0, nil
}

type stubProviderRepo struct {
	ratings map[string]reviewRepo.RatingStats
}

func (r *stubProviderRepo) Create(ctx context.Context, provider *models.Provider) error { return nil }

func (r *stubProviderRepo) GetByID(ctx context.Context, id string) (*models.Provider, error) {
	if id != "prov-1" {
		return nil, providerRepo.ErrNotFound
	}
	return &models.Provider{ID: "prov-1", UserID: "user-prov-1"}, nil
}

func (r *stubProviderRepo) SearchNearby(ctx context.Context, criteria providerRepo.SearchCriteria) ([]providerRepo.NearbyProvider, error) {
	return nil, nil
}

func (r *stubProviderRepo) UpdateCompletionRate(ctx context.Context, id string, rate float64) error {
	return nil
}

func (r *stubProviderRepo) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	if r.ratings == nil {
		r.ratings = make(map[string]reviewRepo.RatingStats)
	}
	r.ratings[id] = reviewRepo.RatingStats{Average: average, Count: count}
	return nil
}

type sentNotification struct {
	UserID string
	Type   string
}

type stubNotifier struct {
	sent []sentNotification
}

func (n *stubNotifier) Notify(ctx context.Context, userID, ntype, title, message string, data map[string]string) {
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: ntype})
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

type reviewFixture struct {
	svc       *DefaultReviewService
	reviews   *fakeReviewRepo
	providers *stubProviderRepo
	notifier  *stubNotifier
}

func newFixture(gw agent.Gateway, bookings ...*models.Booking) *reviewFixture {
	byID := make(map[string]*models.Booking)
	for _, b := range bookings {
		byID[b.ID] = b
	}
	f := &reviewFixture{
		reviews:   newFakeReviewRepo(),
		providers: &stubProviderRepo{},
		notifier:  &stubNotifier{},
	}
	f.svc = &DefaultReviewService{
		ReviewRepo:   f.reviews,
		BookingRepo:  &stubBookingRepo{bookings: byID},
		ProviderRepo: f.providers,
		Notification: f.notifier,
		Invoker:      testInvoker(gw),
	}
	return f
}

func completedBooking() *models.Booking {
	return &models.Booking{
		ID:         "bk-1",
		CustomerID: "cust-1",
		ProviderID: "prov-1",
		Status:     models.StatusCompleted,
	}
}

func submission() models.ReviewSubmission {
	return models.ReviewSubmission{
		BookingID:  "bk-1",
		CustomerID: "cust-1",
		Rating:     5,
		ReviewText: "Fixed the leak quickly and cleaned up after.",
	}
}

func TestSubmitWithAgentAnalysis(t *testing.T) {
	agentJSON := `{"sentiment_score": 0.9, "quality_score": 0.85, "is_likely_fake": false,
		"sentiment": "positive", "key_themes": ["speed", "cleanliness"],
		"actionable_feedback": [], "summary": "a strong review", "red_flags": []}`
	f := newFixture(fixedGateway{response: agentJSON}, completedBooking())

	created, err := f.svc.Submit(context.Background(), submission())

	require.NoError(t, err)
	assert.Equal(t, "prov-1", created.ProviderID, "provider comes from the booking, not the caller")
	assert.InDelta(t, 0.9, created.SentimentScore, 1e-9)
	assert.InDelta(t, 0.85, created.QualityScore, 1e-9)
	assert.False(t, created.IsFlagged)

	stats := f.providers.ratings["prov-1"]
	assert.InDelta(t, 5.0, stats.Average, 1e-9, "provider rating aggregate refreshed")
	assert.Equal(t, 1, stats.Count)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "user-prov-1", f.notifier.sent[0].UserID)
	assert.Equal(t, "review_received", f.notifier.sent[0].Type)
}

func TestSubmitFallsBackWhenAgentFails(t *testing.T) {
	f := newFixture(failingGateway{}, completedBooking())

	created, err := f.svc.Submit(context.Background(), submission())

	require.NoError(t, err, "agent failure must not block the review")
	assert.InDelta(t, 0.7, created.SentimentScore, 1e-9, "rating 5 reads as positive")
	assert.False(t, created.IsFlagged)
}

func TestSubmitFlagsLikelyFakeReviews(t *testing.T) {
	agentJSON := `{"sentiment_score": 1, "quality_score": 0.1, "is_likely_fake": true,
		"sentiment": "positive", "key_themes": [], "actionable_feedback": [],
		"summary": "generic praise, no specifics", "red_flags": ["generic language"]}`
	f := newFixture(fixedGateway{response: agentJSON}, completedBooking())

	created, err := f.svc.Submit(context.Background(), submission())

	require.NoError(t, err)
	assert.True(t, created.IsFlagged)
}

func TestSubmitGuards(t *testing.T) {
	t.Run("unknown booking", func(t *testing.T) {
		f := newFixture(failingGateway{})

		_, err := f.svc.Submit(context.Background(), submission())

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("foreign customer reads as not found", func(t *testing.T) {
		f := newFixture(failingGateway{}, completedBooking())
		sub := submission()
		sub.CustomerID = "cust-2"

		_, err := f.svc.Submit(context.Background(), sub)

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("booking not completed", func(t *testing.T) {
		b := completedBooking()
		b.Status = models.StatusInProgress
		f := newFixture(failingGateway{}, b)

		_, err := f.svc.Submit(context.Background(), submission())

		assert.ErrorIs(t, err, ErrBookingNotCompleted)
	})

	t.Run("at most one review per booking", func(t *testing.T) {
		f := newFixture(failingGateway{}, completedBooking())

		_, err := f.svc.Submit(context.Background(), submission())
		require.NoError(t, err)
		_, err = f.svc.Submit(context.Background(), submission())

		assert.ErrorIs(t, err, ErrAlreadyReviewed)
	})
}

func TestAnalyzeRejectsUnknownSentiment(t *testing.T) {
	agentJSON := `{"sentiment_score": 0.5, "quality_score": 0.5, "sentiment": "ecstatic",
		"key_themes": [], "actionable_feedback": [], "summary": "", "red_flags": []}`
	f := newFixture(fixedGateway{response: agentJSON}, completedBooking())

	analysis := f.svc.Analyze(context.Background(), submission())

	assert.True(t, analysis.Fallback, "an out-of-schema sentiment degrades to the fallback")
}

func TestAnalyzeClampsScores(t *testing.T) {
	agentJSON := `{"sentiment_score": 3.2, "quality_score": -0.4, "sentiment": "positive",
		"key_themes": [], "actionable_feedback": [], "summary": "", "red_flags": []}`
	f := newFixture(fixedGateway{response: agentJSON}, completedBooking())

	analysis := f.svc.Analyze(context.Background(), submission())

	require.False(t, analysis.Fallback)
	assert.InDelta(t, 1.0, analysis.SentimentScore, 1e-9)
	assert.InDelta(t, 0.0, analysis.QualityScore, 1e-9)
}
