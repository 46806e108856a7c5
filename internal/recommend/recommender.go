package recommend

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/pkg/models"
)

// Recommender ranks available listings for a user.
type Recommender struct {
	estates  EstateStore
	profiler *Profiler
	logger   *logrus.Logger
}

func NewRecommender(estates EstateStore, profiler *Profiler, logger *logrus.Logger) *Recommender {
	return &Recommender{
		estates:  estates,
		profiler: profiler,
		logger:   logger,
	}
}

// Recommend returns at most limit available listings, best first.
func (r *Recommender) Recommend(ctx context.Context, userID uuid.UUID, limit int) []models.Estate {
	scored, _ := r.RecommendScored(ctx, userID, limit)

	estates := make([]models.Estate, len(scored))
	for i, s := range scored {
		estates[i] = s.Estate
	}
	return estates
}

// RecommendScored is Recommend with the score of each listing and the
// strategy that produced the ranking.
func (r *Recommender) RecommendScored(ctx context.Context, userID uuid.UUID, limit int) ([]models.ScoredEstate, models.RecommendationStrategy) {
	if limit <= 0 {
		return []models.ScoredEstate{}, models.StrategyPopularity
	}

	profile := r.profiler.BuildProfile(ctx, userID)

	available, err := r.estates.FindEstates(ctx, models.EstateFilter{Status: models.EstateStatusAvailable})
	if err != nil {
		r.logger.WithError(err).WithField("user_id", userID).Error("Failed to load available estates")
		return []models.ScoredEstate{}, models.StrategyPopularity
	}

	if len(available) == 0 {
		r.logger.WithField("user_id", userID).Info("No available estates to recommend")
		return []models.ScoredEstate{}, models.StrategyPopularity
	}

	var (
		scored   []models.ScoredEstate
		strategy models.RecommendationStrategy
	)

	switch stats := GeneralStatisticsOf(available); {
	case profile != nil:
		strategy = models.StrategyPersonalized
		scored = scoreEstates(available, strategy, func(fv models.FeatureVector) float64 {
			return ProfileSimilarity(profile, fv)
		})
	case stats != nil:
		strategy = models.StrategyGeneral
		scored = scoreEstates(available, strategy, func(fv models.FeatureVector) float64 {
			return GeneralSimilarity(stats, fv)
		})
	default:
		strategy = models.StrategyPopularity
		scored = rankByPopularity(available)
	}

	if len(scored) > limit {
		scored = scored[:limit]
	}

	r.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"strategy":   strategy,
		"candidates": len(available),
		"returned":   len(scored),
	}).Info("Generated recommendations")

	return scored, strategy
}

// scoreEstates keeps positive scores only and sorts them descending. Equal
// scores keep snapshot order.
func scoreEstates(estates []models.Estate, strategy models.RecommendationStrategy, score func(models.FeatureVector) float64) []models.ScoredEstate {
	scored := make([]models.ScoredEstate, 0, len(estates))
	for i := range estates {
		fv, ok := ExtractFeatures(&estates[i])
		if !ok {
			continue
		}
		s := score(fv)
		if s <= 0 {
			continue
		}
		scored = append(scored, models.ScoredEstate{
			Estate:   estates[i],
			Score:    s,
			Strategy: strategy,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

func rankByPopularity(estates []models.Estate) []models.ScoredEstate {
	scored := make([]models.ScoredEstate, len(estates))
	for i := range estates {
		scored[i] = models.ScoredEstate{
			Estate:   estates[i],
			Score:    float64(estates[i].Popularity()),
			Strategy: models.StrategyPopularity,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}
