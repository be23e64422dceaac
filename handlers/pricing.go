package handlers

import (
	"errors"
	"net/http"

	providerRepo "karigar/database/repository/provider"
	"karigar/services/pricing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PricingHandler exposes the price recommendation pipeline.
type PricingHandler struct {
	Service pricing.PricingService
	Logger  *zap.Logger
}

func NewPricingHandler(svc pricing.PricingService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{Service: svc, Logger: logger}
}

// RecommendPrice returns a price quote for one of a provider's services.
func (h *PricingHandler) RecommendPrice(c *gin.Context) {
	var input struct {
		ProviderID string `json:"provider_id" binding:"required"`
		ServiceID  string `json:"service_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	quote, err := h.Service.RecommendPrice(c.Request.Context(), input.ProviderID, input.ServiceID)
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
			return
		}
		h.Logger.Error("pricing handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recommend price"})
		return
	}
	c.JSON(http.StatusOK, quote)
}
