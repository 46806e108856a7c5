package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/internal/middleware"
	"github.com/temcen/estaterec/internal/services"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Pricing        *PricingHandler
}

func New(cfg *config.Config, logger *logrus.Logger, services *services.Services) *Handlers {
	validate := validator.New()

	return &Handlers{
		Health:         NewHealthHandler(logger, services.Health),
		Recommendation: NewRecommendationHandler(services.Recommendations, &cfg.Recommendation, logger),
		Pricing:        NewPricingHandler(services.Pricing, validate, logger),
	}
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// currentUser reads the user id placed on the context by the auth middleware.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, _, ok := middleware.GetUserFromContext(c)
	return userID, ok
}
