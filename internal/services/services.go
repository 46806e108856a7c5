package services

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/internal/database"
	"github.com/temcen/estaterec/internal/messaging"
	"github.com/temcen/estaterec/internal/recommend"
)

type Services struct {
	Auth            *AuthService
	Health          *HealthService
	RateLimit       *RateLimitService
	MessageBus      *messaging.MessageBus
	Estates         *EstateRepository
	Interactions    *InteractionRepository
	Favorites       *FavoriteGraph
	Metrics         *EngineMetrics
	Recommendations *RecommendationService
	Pricing         *PricingService
	EstateEvents    *EstateEventProcessor
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	messageBus, err := messaging.NewMessageBus(cfg, logger)
	if err != nil {
		return nil, err
	}

	authService := NewAuthService(cfg, logger, db.Redis.Hot)
	rateLimitService := NewRateLimitService(cfg, logger, db.Redis.Hot)

	// Data access
	estates := NewEstateRepository(db.PG, logger)
	favorites := NewFavoriteGraph(db.Neo4j, logger)
	interactions := NewInteractionRepository(db.PG, estates, favorites, logger)

	metrics := NewEngineMetrics(logger)
	cache := NewResultCache(db.Redis.Warm, logger)
	healthService := NewHealthService(cfg, logger, db, estates, favorites, cache, messageBus)

	// Engines
	profiler := recommend.NewProfiler(interactions, logger)
	recommender := recommend.NewRecommender(estates, profiler, logger)
	locationEstimator := recommend.NewLocationPriceEstimator(estates, &cfg.Pricing, logger)
	estateEstimator := recommend.NewEstatePriceEstimator(estates, interactions, &cfg.Pricing, logger)
	rangeReporter := recommend.NewPriceRangeReporter(estates, logger)

	recommendations := NewRecommendationService(recommender, cache, messageBus, metrics, &cfg.Recommendation, logger)
	pricing := NewPricingService(locationEstimator, estateEstimator, rangeReporter, cache, metrics, &cfg.Pricing, logger)
	estateEvents := NewEstateEventProcessor(favorites, recommendations, pricing, metrics, logger)

	return &Services{
		Auth:            authService,
		Health:          healthService,
		RateLimit:       rateLimitService,
		MessageBus:      messageBus,
		Estates:         estates,
		Interactions:    interactions,
		Favorites:       favorites,
		Metrics:         metrics,
		Recommendations: recommendations,
		Pricing:         pricing,
		EstateEvents:    estateEvents,
	}, nil
}
