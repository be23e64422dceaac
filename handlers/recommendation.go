package handlers

import (
	"net/http"

	"karigar/models"
	"karigar/services/recommendation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecommendationHandler exposes the personalized recommendation pipeline.
type RecommendationHandler struct {
	Service recommendation.RecommendationService
	Logger  *zap.Logger
}

func NewRecommendationHandler(svc recommendation.RecommendationService, logger *zap.Logger) *RecommendationHandler {
	return &RecommendationHandler{Service: svc, Logger: logger}
}

// RecommendProviders returns ranked provider suggestions for a customer.
func (h *RecommendationHandler) RecommendProviders(c *gin.Context) {
	var req models.RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := h.Service.Recommend(c.Request.Context(), req)
	if err != nil {
		h.Logger.Error("recommendation handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to recommend providers"})
		return
	}
	c.JSON(http.StatusOK, result)
}
