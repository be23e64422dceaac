package handlers

import (
	"net/http"

	"karigar/models"
	"karigar/services/matching"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MatchingHandler exposes the provider matching pipeline.
type MatchingHandler struct {
	Service matching.MatchingService
	Logger  *zap.Logger
}

func NewMatchingHandler(svc matching.MatchingService, logger *zap.Logger) *MatchingHandler {
	return &MatchingHandler{Service: svc, Logger: logger}
}

// MatchProviders returns ranked provider matches for a service request.
func (h *MatchingHandler) MatchProviders(c *gin.Context) {
	var req models.MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	result, err := h.Service.MatchProviders(c.Request.Context(), req)
	if err != nil {
		h.Logger.Error("matching handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to match providers"})
		return
	}
	c.JSON(http.StatusOK, result)
}
