package handlers

import (
	"errors"
	"net/http"

	reviewRepo "karigar/database/repository/review"
	"karigar/models"
	"karigar/services/review"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReviewHandler exposes review submission and lookup.
type ReviewHandler struct {
	Service review.ReviewService
	Logger  *zap.Logger
}

func NewReviewHandler(svc review.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{Service: svc, Logger: logger}
}

// CreateReview submits a review for a completed booking.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var sub models.ReviewSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	created, err := h.Service.Submit(c.Request.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		case errors.Is(err, review.ErrBookingNotCompleted), errors.Is(err, review.ErrAlreadyReviewed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			h.Logger.Error("review handler error", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit review"})
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetReview returns a review by ID.
func (h *ReviewHandler) GetReview(c *gin.Context) {
	found, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, reviewRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
			return
		}
		h.Logger.Error("review handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch review"})
		return
	}
	c.JSON(http.StatusOK, found)
}
