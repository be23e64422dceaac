package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bookingRepo "karigar/database/repository/booking"
	providerRepo "karigar/database/repository/provider"
	reviewRepo "karigar/database/repository/review"
	"karigar/models"
	"karigar/services/agent"
	"karigar/services/notification"
	"karigar/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the booking does not exist or does not belong
// to the reviewing customer.
var ErrNotFound = errors.New("booking not found")

// ErrBookingNotCompleted is returned when the booking has not reached the
// completed state yet.
var ErrBookingNotCompleted = errors.New("only completed bookings can be reviewed")

// ErrAlreadyReviewed is returned when a review already exists for the booking.
var ErrAlreadyReviewed = reviewRepo.ErrAlreadyExists

const reviewInstructions = `You are a review analysis agent. Analyze customer reviews for quality and authenticity.

Evaluate:
1. Sentiment (positive, neutral, negative)
2. Specificity and detail level
3. Language patterns (generic vs specific)
4. Consistency with booking details
5. Potential fake review indicators
6. Key themes and topics mentioned
7. Actionable feedback for provider

Return a JSON response with:
{
    "sentiment_score": -1 to 1,
    "quality_score": 0 to 1,
    "is_likely_fake": boolean,
    "sentiment": "positive|neutral|negative",
    "key_themes": ["list", "of", "themes"],
    "actionable_feedback": ["list", "of", "feedback", "items"],
    "summary": "overall analysis summary",
    "red_flags": ["any", "suspicious", "indicators"]
}`

// ReviewService accepts customer reviews of completed bookings and analyzes
// them for sentiment and authenticity.
type ReviewService interface {
	// Submit validates, analyzes and stores a review. Agent failures degrade
	// to the rating-based fallback analysis and never block the review.
	Submit(ctx context.Context, sub models.ReviewSubmission) (*models.Review, error)
	GetByID(ctx context.Context, id string) (*models.Review, error)
}

// DefaultReviewService implements ReviewService.
type DefaultReviewService struct {
	ReviewRepo   reviewRepo.ReviewRepository
	BookingRepo  bookingRepo.BookingRepository
	ProviderRepo providerRepo.ProviderRepository
	Notification notification.NotificationService
	Invoker      *agent.Invoker
}

func (s *DefaultReviewService) Submit(ctx context.Context, sub models.ReviewSubmission) (*models.Review, error) {
	booking, err := s.BookingRepo.GetByID(ctx, sub.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// A customer mismatch reads as not-found so booking IDs cannot be probed.
	if booking.CustomerID != sub.CustomerID {
		return nil, ErrNotFound
	}
	if booking.Status != models.StatusCompleted {
		return nil, ErrBookingNotCompleted
	}

	analysis := s.Analyze(ctx, sub)

	now := time.Now().UTC()
	review := &models.Review{
		ID:              uuid.New().String(),
		BookingID:       sub.BookingID,
		CustomerID:      sub.CustomerID,
		ProviderID:      booking.ProviderID,
		Rating:          sub.Rating,
		ReviewText:      sub.ReviewText,
		ServiceQuality:  sub.ServiceQuality,
		Punctuality:     sub.Punctuality,
		Professionalism: sub.Professionalism,
		ValueForMoney:   sub.ValueForMoney,
		SentimentScore:  analysis.SentimentScore,
		QualityScore:    analysis.QualityScore,
		IsFlagged:       analysis.IsLikelyFake,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.ReviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}

	s.refreshProviderRating(ctx, booking.ProviderID)
	s.notifyProvider(ctx, booking.ProviderID, review)
	return review, nil
}

func (s *DefaultReviewService) GetByID(ctx context.Context, id string) (*models.Review, error) {
	return s.ReviewRepo.GetByID(ctx, id)
}

// Analyze runs the review through the analysis agent, degrading to the
// rating-based fallback. It never fails.
func (s *DefaultReviewService) Analyze(ctx context.Context, sub models.ReviewSubmission) models.ReviewAnalysis {
	payload := reviewContext{
		Rating:           sub.Rating,
		ReviewText:       sub.ReviewText,
		ServiceQuality:   sub.ServiceQuality,
		Punctuality:      sub.Punctuality,
		Professionalism:  sub.Professionalism,
		ValueForMoney:    sub.ValueForMoney,
		ExecutionContext: "review_analysis",
	}

	result := agent.Invoke(ctx, s.Invoker, agent.Call[models.ReviewAnalysis]{
		Agent:        "review_agent",
		Instructions: reviewInstructions,
		Context:      payload,
		Parse:        parseAgentAnalysis,
		Fallback: func(reason string) models.ReviewAnalysis {
			analysis := FallbackAnalysis(sub.Rating, sub.ReviewText)
			analysis.Summary = fmt.Sprintf("Fallback analysis used due to error: %s", reason)
			return analysis
		},
	})

	analysis := result.Value
	analysis.Fallback = result.Fallback
	return analysis
}

// refreshProviderRating recomputes the provider's denormalized rating
// aggregate. Failures are logged, never fatal to the review.
func (s *DefaultReviewService) refreshProviderRating(ctx context.Context, providerID string) {
	logger := utils.GetLogger()

	stats, err := s.ReviewRepo.RatingStatsForProvider(ctx, providerID)
	if err != nil {
		logger.Warn("review: rating aggregation failed",
			zap.String("providerID", providerID), zap.Error(err))
		return
	}
	if err := s.ProviderRepo.UpdateRating(ctx, providerID, stats.Average, stats.Count); err != nil {
		logger.Warn("review: failed to update provider rating",
			zap.String("providerID", providerID), zap.Error(err))
	}
}

func (s *DefaultReviewService) notifyProvider(ctx context.Context, providerID string, review *models.Review) {
	provider, err := s.ProviderRepo.GetByID(ctx, providerID)
	if err != nil {
		utils.GetLogger().Warn("review: failed to resolve provider for notification",
			zap.String("providerID", providerID), zap.Error(err))
		return
	}
	s.Notification.Notify(ctx, provider.UserID, "review_received", "New review received",
		fmt.Sprintf("You received a %d-star review.", review.Rating),
		map[string]string{"review_id": review.ID, "booking_id": review.BookingID})
}

type reviewContext struct {
	Rating           int    `json:"rating"`
	ReviewText       string `json:"review_text"`
	ServiceQuality   int    `json:"service_quality,omitempty"`
	Punctuality      int    `json:"punctuality,omitempty"`
	Professionalism  int    `json:"professionalism,omitempty"`
	ValueForMoney    int    `json:"value_for_money,omitempty"`
	ExecutionContext string `json:"execution_context"`
}

// parseAgentAnalysis validates the agent's schema and clamps the scores into
// their documented ranges.
func parseAgentAnalysis(raw []byte) (models.ReviewAnalysis, error) {
	var analysis models.ReviewAnalysis
	if err := json.Unmarshal(raw, &analysis); err != nil {
		return models.ReviewAnalysis{}, err
	}
	switch analysis.Sentiment {
	case models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative:
	default:
		return models.ReviewAnalysis{}, fmt.Errorf("unknown sentiment %q", analysis.Sentiment)
	}

	analysis.SentimentScore = clamp(analysis.SentimentScore, -1, 1)
	analysis.QualityScore = clamp(analysis.QualityScore, 0, 1)
	if analysis.KeyThemes == nil {
		analysis.KeyThemes = []string{}
	}
	if analysis.ActionableFeedback == nil {
		analysis.ActionableFeedback = []string{}
	}
	if analysis.RedFlags == nil {
		analysis.RedFlags = []string{}
	}
	return analysis, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
