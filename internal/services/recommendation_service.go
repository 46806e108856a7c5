package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/internal/recommend"
	"github.com/temcen/estaterec/pkg/models"
)

const recommendationSuccessMsg = "Success!"

// RecommendationEventPublisher announces served recommendation lists.
type RecommendationEventPublisher interface {
	PublishRecommendationEvent(ctx context.Context, event models.RecommendationEvent) error
}

// RecommendationService serves cached recommendation lists for users.
type RecommendationService struct {
	recommender *recommend.Recommender
	cache       Cache
	publisher   RecommendationEventPublisher
	metrics     *EngineMetrics
	config      *config.RecommendationConfig
	logger      *logrus.Logger
}

type cachedRecommendations struct {
	Strategy models.RecommendationStrategy `json:"strategy"`
	Estates  []models.Estate               `json:"estates"`
}

func NewRecommendationService(
	recommender *recommend.Recommender,
	cache Cache,
	publisher RecommendationEventPublisher,
	metrics *EngineMetrics,
	cfg *config.RecommendationConfig,
	logger *logrus.Logger,
) *RecommendationService {
	return &RecommendationService{
		recommender: recommender,
		cache:       cache,
		publisher:   publisher,
		metrics:     metrics,
		config:      cfg,
		logger:      logger,
	}
}

func (s *RecommendationService) GetRecommendations(ctx context.Context, userID uuid.UUID, limit int) *models.RecommendationResponse {
	key := recommendationKey(userID, limit)

	var cached cachedRecommendations
	if s.cache.Get(ctx, key, &cached) {
		s.metrics.RecordCacheLookup("recommend", true)
		return &models.RecommendationResponse{
			Msg:             recommendationSuccessMsg,
			Result:          len(cached.Estates),
			Recommendations: cached.Estates,
			CacheHit:        true,
		}
	}
	s.metrics.RecordCacheLookup("recommend", false)

	start := time.Now()
	scored, strategy := s.recommender.RecommendScored(ctx, userID, limit)
	s.metrics.RecordRecommendation(string(strategy), time.Since(start))

	estates := make([]models.Estate, len(scored))
	ids := make([]uuid.UUID, len(scored))
	for i, item := range scored {
		estates[i] = item.Estate
		ids[i] = item.Estate.ID
	}

	if len(estates) > 0 {
		s.cache.Set(ctx, key, cachedRecommendations{Strategy: strategy, Estates: estates}, s.config.CacheTTL)
	}

	if s.publisher != nil {
		event := models.RecommendationEvent{
			EventID:   uuid.New(),
			UserID:    userID,
			Strategy:  strategy,
			EstateIDs: ids,
			Limit:     limit,
			Timestamp: time.Now().Unix(),
		}
		if err := s.publisher.PublishRecommendationEvent(ctx, event); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to publish recommendation event")
		}
	}

	return &models.RecommendationResponse{
		Msg:             recommendationSuccessMsg,
		Result:          len(estates),
		Recommendations: estates,
	}
}

// InvalidateUser drops every cached recommendation list of the user.
func (s *RecommendationService) InvalidateUser(ctx context.Context, userID uuid.UUID) int {
	return s.cache.DeletePrefix(ctx, userRecommendationPrefix(userID))
}

// InvalidateAll drops every cached recommendation list.
func (s *RecommendationService) InvalidateAll(ctx context.Context) int {
	return s.cache.DeletePrefix(ctx, recommendationKeyPrefix)
}
