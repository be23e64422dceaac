package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	bookingRepo "karigar/database/repository/booking"
	providerRepo "karigar/database/repository/provider"
	"karigar/models"
	"karigar/services/agent"
)

const pricingInstructions = `You are a pricing optimization agent. Your role is to recommend a fair price for a service engagement.

Consider:
1. The service's listed base price
2. Provider's experience and ratings
3. Market average for this service category
4. Demand for the category

Return a JSON response with:
{
    "recommended_price": decimal,
    "price_range": {
        "min": decimal,
        "max": decimal
    },
    "reasoning": "explanation of the recommendation",
    "factors": {
        "base_rate": decimal,
        "experience_multiplier": decimal,
        "complexity_adjustment": decimal,
        "demand_adjustment": decimal,
        "distance_cost": decimal
    },
    "market_comparison": "how this compares to the market"
}`

// PricingService recommends a quoted price for a provider's service.
type PricingService interface {
	RecommendPrice(ctx context.Context, providerID, serviceID string) (*models.PriceQuote, error)
}

// DefaultPricingService implements PricingService.
type DefaultPricingService struct {
	ProviderRepo providerRepo.ProviderRepository
	BookingRepo  bookingRepo.BookingRepository
	Invoker      *agent.Invoker
}

type pricingContext struct {
	ServiceID        string  `json:"service_id"`
	ProviderID       string  `json:"provider_id"`
	ServiceTitle     string  `json:"service_title"`
	Category         string  `json:"category"`
	BasePrice        float64 `json:"base_price"`
	MarketAverage    float64 `json:"market_average"`
	Rating           float64 `json:"rating"`
	TotalBookings    int     `json:"total_bookings"`
	ExecutionContext string  `json:"execution_context"`
}

func (s *DefaultPricingService) RecommendPrice(ctx context.Context, providerID, serviceID string) (*models.PriceQuote, error) {
	provider, err := s.ProviderRepo.GetByID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	service := provider.ServiceByID(serviceID)
	if service == nil {
		return nil, fmt.Errorf("service %s not offered by provider %s", serviceID, providerID)
	}

	marketAverage, err := s.BookingRepo.AvgCompletedPriceByCategory(ctx, service.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to compute market average: %w", err)
	}
	if marketAverage == 0 {
		marketAverage = service.BasePrice
	}

	payload := pricingContext{
		ServiceID:        serviceID,
		ProviderID:       providerID,
		ServiceTitle:     service.Title,
		Category:         service.Category,
		BasePrice:        service.BasePrice,
		MarketAverage:    marketAverage,
		Rating:           provider.RatingAverage,
		TotalBookings:    provider.TotalBookings,
		ExecutionContext: "pricing",
	}

	result := agent.Invoke(ctx, s.Invoker, agent.Call[*models.PriceQuote]{
		Agent:        "pricing_agent",
		Instructions: pricingInstructions,
		Context:      payload,
		Parse:        parseAgentQuote,
		Fallback: func(reason string) *models.PriceQuote {
			quote := FallbackQuote(service.BasePrice, marketAverage, provider.RatingAverage)
			quote.Reasoning = fmt.Sprintf("Fallback pricing used due to error: %s", reason)
			return quote
		},
	})

	quote := result.Value
	quote.Fallback = result.Fallback
	return quote, nil
}

func parseAgentQuote(raw []byte) (*models.PriceQuote, error) {
	var quote models.PriceQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return nil, err
	}
	if quote.RecommendedPrice <= 0 {
		return nil, fmt.Errorf("agent returned no recommended price")
	}
	return &quote, nil
}
