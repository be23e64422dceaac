package matching

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
	"karigar/utils"

	"go.uber.org/zap"
)

// DefaultSearchRadiusKm bounds the geospatial candidate query.
const DefaultSearchRadiusKm = 50.0

const maxCandidates = 20
const maxAgentMatches = 10

const matchingInstructions = `You are a service provider matching agent. Your role is to analyze customer requirements and find the best matching service providers.

Consider:
1. Service category and specific requirements
2. Geographic proximity (distance from customer)
3. Provider ratings and review sentiment
4. Provider availability for requested time
5. Pricing compatibility with customer budget
6. Provider's completion rate and reliability
7. Provider's specialization and experience

Return a JSON response with:
{
    "matches": [
        {
            "provider_id": "uuid",
            "match_score": 0-100,
            "reasoning": "explanation of why this provider is a good match",
            "strengths": ["list", "of", "strengths"],
            "concerns": ["any", "concerns"]
        }
    ],
    "summary": "overall matching summary"
}`

// MatchingService produces ranked provider matches for a service request.
type MatchingService interface {
	// MatchProviders returns ordered matches. An empty candidate set yields an
	// empty match list, not an error; agent failures degrade to the fallback
	// scorer and never surface.
	MatchProviders(ctx context.Context, req models.MatchRequest) (*models.MatchResult, error)
}

// DefaultMatchingService implements MatchingService.
type DefaultMatchingService struct {
	ProviderRepo providerRepo.ProviderRepository
	BookingRepo  bookingRepo.BookingRepository
	Invoker      *agent.Invoker
	RadiusKm     float64
}

func (s *DefaultMatchingService) MatchProviders(ctx context.Context, req models.MatchRequest) (*models.MatchResult, error) {
	logger := utils.GetLogger()

	radius := s.RadiusKm
	if radius <= 0 {
		radius = DefaultSearchRadiusKm
	}

	candidates, err := s.gatherCandidates(ctx, req, radius)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		logger.Info("matching: no candidates in radius",
			zap.String("category", req.Category), zap.Float64("radiusKm", radius))
		return &models.MatchResult{Matches: []models.ProviderMatch{}}, nil
	}

	payload := matchingContext{
		CustomerRequest: customerRequest{
			ServiceCategory: req.Category,
			Location:        latLng{Lat: req.Latitude, Lng: req.Longitude},
			PreferredDate:   req.PreferredDate,
			PreferredTime:   req.PreferredTime,
			Budget:          req.Budget,
		},
		AvailableProviders: candidates,
		ExecutionContext:   "matching",
	}

	result := agent.Invoke(ctx, s.Invoker, agent.Call[*models.MatchResult]{
		Agent:        "matching_agent",
		Instructions: matchingInstructions,
		Context:      payload,
		Parse: func(raw []byte) (*models.MatchResult, error) {
			return parseAgentMatches(raw, candidates)
		},
		Fallback: func(reason string) *models.MatchResult {
			return &models.MatchResult{
				Matches: FallbackMatches(candidates),
				Summary: fmt.Sprintf("Fallback matching used due to error: %s", reason),
			}
		},
	})

	matches := result.Value
	matches.Fallback = result.Fallback
	return matches, nil
}

// gatherCandidates runs the geospatial query and enriches each hit with the
// request-relative data the scorer and the agent both consume.
func (s *DefaultMatchingService) gatherCandidates(
	ctx context.Context,
	req models.MatchRequest,
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
			if svc.Category == req.Category && svc.IsActive {
				basePrice = svc.BasePrice
				break
			}
		}

		avgPrice, err := s.BookingRepo.AvgCompletedPrice(ctx, p.ID)
		if err != nil {
			utils.GetLogger().Warn("matching: average price lookup failed",
				zap.String("providerID", p.ID), zap.Error(err))
		}
		if avgPrice == 0 {
			avgPrice = basePrice
		}

		candidates = append(candidates, models.MatchCandidate{
			ProviderID:          p.ID,
			Name:                p.BusinessName,
			DistanceKm:          math.Round(distanceKm*100) / 100,
			Rating:              p.RatingAverage,
			TotalReviews:        p.RatingCount,
			CompletionRate:      p.CompletionRate,
			BasePrice:           basePrice,
			AvgPrice:            avgPrice,
			ResponseTimeMinutes: p.ResponseTimeMinutes,
			TotalBookings:       p.TotalBookings,
		})
	}
	return candidates, nil
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type customerRequest struct {
	ServiceCategory string   `json:"service_category"`
	Location        latLng   `json:"location"`
	PreferredDate   string   `json:"preferred_date,omitempty"`
	PreferredTime   string   `json:"preferred_time,omitempty"`
	Budget          *float64 `json:"budget,omitempty"`
}

type matchingContext struct {
	CustomerRequest    customerRequest         `json:"customer_request"`
	AvailableProviders []models.MatchCandidate `json:"available_providers"`
	ExecutionContext   string                  `json:"execution_context"`
}

type wireMatch struct {
	ProviderID string   `json:"provider_id"`
	MatchScore float64  `json:"match_score"`
	Reasoning  string   `json:"reasoning"`
	Strengths  []string `json:"strengths"`
	Concerns   []string `json:"concerns"`
}

type wireMatchResult struct {
	Matches []wireMatch `json:"matches"`
	Summary string      `json:"summary"`
}

// parseAgentMatches re-associates the agent's ranking with the enriched
// candidates, dropping entries referencing unknown providers.
func parseAgentMatches(raw []byte, candidates []models.MatchCandidate) (*models.MatchResult, error) {
	var wire wireMatchResult
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, err
	}
	if len(wire.Matches) == 0 {
		return nil, fmt.Errorf("agent returned no matches")
	}

	byID := make(map[string]*models.MatchCandidate, len(candidates))
	for i := range candidates {
		byID[candidates[i].ProviderID] = &candidates[i]
	}

	matches := make([]models.ProviderMatch, 0, len(wire.Matches))
	for _, wm := range wire.Matches {
		candidate, ok := byID[wm.ProviderID]
		if !ok {
			continue
		}
		strengths := wm.Strengths
		if strengths == nil {
			strengths = []string{}
		}
		concerns := wm.Concerns
		if concerns == nil {
			concerns = []string{}
		}
		matches = append(matches, models.ProviderMatch{
			ProviderID: wm.ProviderID,
			MatchScore: wm.MatchScore,
			Reasoning:  wm.Reasoning,
			Strengths:  strengths,
			Concerns:   concerns,
			Provider:   candidate,
		})
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("agent matches referenced no known providers")
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	if len(matches) > maxAgentMatches {
		matches = matches[:maxAgentMatches]
	}
	return &models.MatchResult{Matches: matches, Summary: wire.Summary}, nil
}
