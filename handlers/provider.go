package handlers

import (
	"errors"
	"net/http"
	"time"

	providerRepo "karigar/database/repository/provider"
	"karigar/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProviderHandler exposes provider profile endpoints.
type ProviderHandler struct {
	Repo   providerRepo.ProviderRepository
	Logger *zap.Logger
}

func NewProviderHandler(repo providerRepo.ProviderRepository, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{Repo: repo, Logger: logger}
}

// CreateProvider registers a provider profile with its service catalogue.
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var provider models.Provider
	if err := c.ShouldBindJSON(&provider); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	now := time.Now().UTC()
	provider.ID = uuid.New().String()
	if provider.Status == "" {
		provider.Status = models.ProviderPending
	}
	for i := range provider.Services {
		if provider.Services[i].ID == "" {
			provider.Services[i].ID = uuid.New().String()
		}
	}
	provider.CreatedAt = now
	provider.UpdatedAt = now

	if err := h.Repo.Create(c.Request.Context(), &provider); err != nil {
		h.Logger.Error("provider handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create provider"})
		return
	}
	c.JSON(http.StatusCreated, provider)
}

// GetProvider returns a provider profile by ID.
func (h *ProviderHandler) GetProvider(c *gin.Context) {
	provider, err := h.Repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, providerRepo.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
			return
		}
		h.Logger.Error("provider handler error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load provider"})
		return
	}
	c.JSON(http.StatusOK, provider)
}
