package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/pkg/models"
)

const fallbackLimit = 10

type RecommendationProvider interface {
	GetRecommendations(ctx context.Context, userID uuid.UUID, limit int) *models.RecommendationResponse
}

type RecommendationHandler struct {
	recommendations RecommendationProvider
	config          *config.RecommendationConfig
	logger          *logrus.Logger
}

func NewRecommendationHandler(
	recommendations RecommendationProvider,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationHandler {
	return &RecommendationHandler{
		recommendations: recommendations,
		config:          cfg,
		logger:          logger,
	}
}

// Get answers GET /recommendations?limit= for the authenticated user.
func (h *RecommendationHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "UNAUTHENTICATED", "Authentication is required")
		return
	}

	limit := h.config.DefaultLimit
	if limit <= 0 {
		limit = fallbackLimit
	}

	if limitStr, present := c.GetQuery("limit"); present {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			respondError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	if h.config.MaxLimit > 0 && limit > h.config.MaxLimit {
		limit = h.config.MaxLimit
	}

	response := h.recommendations.GetRecommendations(c.Request.Context(), userID, limit)

	h.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"limit":     limit,
		"returned":  response.Result,
		"cache_hit": response.CacheHit,
	}).Debug("Served recommendations")

	c.JSON(http.StatusOK, response)
}
