package recommendation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	bookingRepo "karigar/database/repository/booking"
	providerRepo "karigar/database/repository/provider"
	"karigar/models"
	"karigar/services/agent"
	"karigar/services/matching"
	"karigar/utils"

	"go.uber.org/zap"
)

const maxCandidates = 50
const historyWindow = 20

const recommendationInstructions = `You are a recommendation agent. Suggest service providers based on user preferences and history.

Consider:
1. User's past bookings and ratings
2. Services frequently used
3. Preferred price ranges
4. Location patterns
5. Time preferences
6. Providers user has rated highly
7. Similar users' preferences
8. Trending providers in user's area

Return a JSON response with:
{
    "recommendations": [
        {
            "provider_id": "uuid",
            "confidence": 0-1,
            "reasoning": "why this provider is recommended",
            "match_factors": ["factor1", "factor2"]
        }
    ],
    "personalization_insights": {
        "preferred_categories": ["list"],
        "price_range": {"min": decimal, "max": decimal},
        "location_preference": "description"
    },
    "summary": "overall recommendation summary"
}`

// RecommendationService produces personalized provider suggestions for a
// customer based on their booking history and location.
type RecommendationService interface {
	// Recommend returns ranked suggestions. An empty candidate set yields an
	// empty list, not an error; agent failures degrade to the fallback rule.
	Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResult, error)
}

// DefaultRecommendationService implements RecommendationService.
type DefaultRecommendationService struct {
	ProviderRepo providerRepo.ProviderRepository
	BookingRepo  bookingRepo.BookingRepository
	Invoker      *agent.Invoker
	RadiusKm     float64
}

func (s *DefaultRecommendationService) Recommend(ctx context.Context, req models.RecommendationRequest) (*models.RecommendationResult, error) {
	logger := utils.GetLogger()

	radius := s.RadiusKm
	if radius <= 0 {
		radius = matching.DefaultSearchRadiusKm
	}
	limit := req.Limit
	if limit <= 0 || limit > maxRecommendations {
		limit = maxRecommendations
	}

	candidates, err := s.gatherCandidates(ctx, req, radius)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.Info("recommendation: no candidates in radius",
			zap.String("customerID", req.CustomerID), zap.Float64("radiusKm", radius))
		return &models.RecommendationResult{Recommendations: []models.ProviderRecommendation{}}, nil
	}

	history := s.buildHistory(ctx, req.CustomerID)

	payload := recommendationContext{
		CustomerID:         req.CustomerID,
		UserHistory:        history,
		AvailableProviders: candidates,
		Category:           req.Category,
		ExecutionContext:   "recommendations",
	}

	result := agent.Invoke(ctx, s.Invoker, agent.Call[*models.RecommendationResult]{
		Agent:        "recommendation_agent",
		Instructions: recommendationInstructions,
		Context:      payload,
		Parse: func(raw []byte) (*models.RecommendationResult, error) {
			return parseAgentRecommendations(raw, candidates)
		},
		Fallback: func(reason string) *models.RecommendationResult {
			return &models.RecommendationResult{
				Recommendations: FallbackRecommendations(candidates),
				Summary:         fmt.Sprintf("Fallback recommendations used due to error: %s", reason),
			}
		},
	})

	recommendations := result.Value
	recommendations.Fallback = result.Fallback
	if len(recommendations.Recommendations) > limit {
		recommendations.Recommendations = recommendations.Recommendations[:limit]
	}
	return recommendations, nil
}

// gatherCandidates runs the geospatial query and enriches each hit with the
// request-relative data the fallback rule and the agent both consume.
func (s *DefaultRecommendationService) gatherCandidates(
	ctx context.Context,
	req models.RecommendationRequest,
	radiusKm float64,
) ([]models.MatchCandidate, error) {
	nearby, err := s.ProviderRepo.SearchNearby(ctx, providerRepo.SearchCriteria{
		Category:      req.Category,
		LocationGeo:   models.NewGeoPoint(req.Latitude, req.Longitude),
		MaxDistanceKm: radiusKm,
		Limit:         maxCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("provider search failed: %w", err)
	}

	candidates := make([]models.MatchCandidate, 0, len(nearby))
	for _, p := range nearby {
		distanceKm := p.DistanceMeters / 1000
		if p.DistanceMeters == 0 && len(p.LocationGeo.Coordinates) == 2 {
			distanceKm = utils.Haversine(req.Latitude, req.Longitude, p.LocationGeo.Lat(), p.LocationGeo.Lng())
		}

		basePrice := 0.0
		for _, svc := range p.Services {
			if svc.IsActive && (req.Category == "" || svc.Category == req.Category) {
				basePrice = svc.BasePrice
				break
			}
		}

		candidates = append(candidates, models.MatchCandidate{
			ProviderID:          p.ID,
			Name:                p.BusinessName,
			DistanceKm:          math.Round(distanceKm*100) / 100,
			Rating:              p.RatingAverage,
			TotalReviews:        p.RatingCount,
			CompletionRate:      p.CompletionRate,
			BasePrice:           basePrice,
			ResponseTimeMinutes: p.ResponseTimeMinutes,
			TotalBookings:       p.TotalBookings,
		})
	}
	return candidates, nil
}

// buildHistory summarizes the customer's completed bookings for the agent.
// Lookup failures degrade to an empty history, never a failed request.
func (s *DefaultRecommendationService) buildHistory(ctx context.Context, customerID string) userHistory {
	history := userHistory{PreferredCategories: []string{}}

	past, err := s.BookingRepo.CompletedForCustomer(ctx, customerID, historyWindow)
	if err != nil {
		utils.GetLogger().Warn("recommendation: booking history lookup failed",
			zap.String("customerID", customerID), zap.Error(err))
		return history
	}
	history.TotalBookings = len(past)
	if len(past) == 0 {
		return history
	}

	categoryCounts := make(map[string]int)
	var minPrice, maxPrice float64
	for _, b := range past {
		if b.Category != "" {
			categoryCounts[b.Category]++
		}
		if b.FinalPrice <= 0 {
			continue
		}
		if minPrice == 0 || b.FinalPrice < minPrice {
			minPrice = b.FinalPrice
		}
		if b.FinalPrice > maxPrice {
			maxPrice = b.FinalPrice
		}
	}
	if maxPrice > 0 {
		history.PriceRange = &models.PriceRange{Min: minPrice, Max: maxPrice}
	}

	for category := range categoryCounts {
		history.PreferredCategories = append(history.PreferredCategories, category)
	}
	sort.Slice(history.PreferredCategories, func(i, j int) bool {
		ci, cj := history.PreferredCategories[i], history.PreferredCategories[j]
		if categoryCounts[ci] != categoryCounts[cj] {
			return categoryCounts[ci] > categoryCounts[cj]
		}
		return ci < cj
	})
	return history
}

type userHistory struct {
	TotalBookings       int                `json:"total_bookings"`
	PreferredCategories []string           `json:"preferred_categories"`
	PriceRange          *models.PriceRange `json:"price_range,omitempty"`
}

type recommendationContext struct {
	CustomerID         string                  `json:"customer_id"`
	UserHistory        userHistory             `json:"user_history"`
	AvailableProviders []models.MatchCandidate `json:"available_providers"`
	Category           string                  `json:"category,omitempty"`
	ExecutionContext   string                  `json:"execution_context"`
}

type wireRecommendation struct {
	ProviderID   string   `json:"provider_id"`
	Confidence   float64  `json:"confidence"`
	Reasoning    string   `json:"reasoning"`
	MatchFactors []string `json:"match_factors"`
}

type wireRecommendationResult struct {
	Recommendations []wireRecommendation          `json:"recommendations"`
	Insights        models.RecommendationInsights `json:"personalization_insights"`
	Summary         string                        `json:"summary"`
}

// parseAgentRecommendations re-associates the agent's ranking with the
// enriched candidates, dropping entries referencing unknown providers.
func parseAgentRecommendations(raw []byte, candidates []models.MatchCandidate) (*models.RecommendationResult, error) {
	var wire wireRecommendationResult
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	if len(wire.Recommendations) == 0 {
		return nil, fmt.Errorf("agent returned no recommendations")
	}

	byID := make(map[string]*models.MatchCandidate, len(candidates))
	for i := range candidates {
		byID[candidates[i].ProviderID] = &candidates[i]
	}

	recommendations := make([]models.ProviderRecommendation, 0, len(wire.Recommendations))
	for _, wr := range wire.Recommendations {
		candidate, ok := byID[wr.ProviderID]
		if !ok {
			continue
		}
		factors := wr.MatchFactors
		if factors == nil {
			factors = []string{}
		}
		confidence := wr.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}
		recommendations = append(recommendations, models.ProviderRecommendation{
			ProviderID:   wr.ProviderID,
			Confidence:   confidence,
			Reasoning:    wr.Reasoning,
			MatchFactors: factors,
			Provider:     candidate,
		})
	}
	if len(recommendations) == 0 {
		return nil, fmt.Errorf("agent recommendations referenced no known providers")
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Confidence > recommendations[j].Confidence
	})
	return &models.RecommendationResult{
		Recommendations: recommendations,
		Insights:        wire.Insights,
		Summary:         wire.Summary,
	}, nil
}
