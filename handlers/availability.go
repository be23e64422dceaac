package handlers

import (
	"net/http"
	"time"

	availabilityRepo "karigar/database/repository/availability"
	"karigar/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityHandler manages a provider's weekly schedule and time off.
type AvailabilityHandler struct {
	Repo   availabilityRepo.AvailabilityRepository
	Logger *zap.Logger
}

func NewAvailabilityHandler(repo availabilityRepo.AvailabilityRepository, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Repo: repo, Logger: logger}
}

// SetWeeklySchedule replaces the provider's entire weekly schedule.
func (h *AvailabilityHandler) SetWeeklySchedule(c *gin.Context) {
	providerID := c.Param("id")

	var schedule models.WeeklySchedule
	if err := c.ShouldBindJSON(&schedule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	now := time.Now().UTC()
	entries := make([]models.ProviderAvailability, 0, len(schedule.Entries))
	for _, entry := range schedule.Entries {
		entries = append(entries, models.ProviderAvailability{
			ID:          uuid.New().String(),
			ProviderID:  providerID,
			DayOfWeek:   entry.DayOfWeek,
			StartTime:   entry.StartTime,
			EndTime:     entry.EndTime,
			IsAvailable: entry.IsAvailable,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := h.Repo.ReplaceWeekly(c.Request.Context(), providerID, entries); err != nil {
		h.Logger.Error("availability handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save weekly schedule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetWeeklySchedule returns the provider's recurring availability.
func (h *AvailabilityHandler) GetWeeklySchedule(c *gin.Context) {
	entries, err := h.Repo.GetWeekly(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Logger.Error("availability handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load weekly schedule"})
		return
	}
	if entries == nil {
		entries = []models.ProviderAvailability{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddTimeOff records a time-off interval for the provider.
func (h *AvailabilityHandler) AddTimeOff(c *gin.Context) {
	var input struct {
		StartDatetime time.Time `json:"start_datetime" binding:"required"`
		EndDatetime   time.Time `json:"end_datetime" binding:"required"`
		Reason        string    `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if !input.EndDatetime.After(input.StartDatetime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_datetime must be after start_datetime"})
		return
	}

	timeOff := &models.ProviderTimeOff{
		ID:            uuid.New().String(),
		ProviderID:    c.Param("id"),
		StartDatetime: input.StartDatetime,
		EndDatetime:   input.EndDatetime,
		Reason:        input.Reason,
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.Repo.AddTimeOff(c.Request.Context(), timeOff); err != nil {
		h.Logger.Error("availability handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add time off"})
		return
	}
	c.JSON(http.StatusCreated, timeOff)
}

// DeleteTimeOff removes a time-off interval.
func (h *AvailabilityHandler) DeleteTimeOff(c *gin.Context) {
	if err := h.Repo.DeleteTimeOff(c.Request.Context(), c.Param("id"), c.Param("timeOffID")); err != nil {
		h.Logger.Error("availability handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete time off"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
