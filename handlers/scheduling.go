package handlers

import (
	"net/http"
	"strconv"
	"time"

	"karigar/models"
	"karigar/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SchedulingHandler exposes slot computation and agent-assisted suggestions.
type SchedulingHandler struct {
	Service scheduling.SchedulingService
	Logger  *zap.Logger
}

func NewSchedulingHandler(svc scheduling.SchedulingService, logger *zap.Logger) *SchedulingHandler {
	return &SchedulingHandler{Service: svc, Logger: logger}
}

// SuggestSlots returns ranked, annotated slot suggestions for a provider.
func (h *SchedulingHandler) SuggestSlots(c *gin.Context) {
	var query models.SlotQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	suggestions, err := h.Service.SuggestSlots(c.Request.Context(), query)
	if err != nil {
		h.Logger.Error("scheduling handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to suggest slots"})
		return
	}
	c.JSON(http.StatusOK, suggestions)
}

// GetSlots returns the authoritative bookable windows for a provider on one
// date. Query params: date (required, 2006-01-02) and duration (minutes).
func (h *SchedulingHandler) GetSlots(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing date, expected YYYY-MM-DD"})
		return
	}
	duration := 0
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration must be a positive integer"})
			return
		}
	}

	slots, err := h.Service.ComputeSlots(c.Request.Context(), c.Param("id"), date, duration)
	if err != nil {
		h.Logger.Error("scheduling handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute slots"})
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}
