package recommend

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/pkg/models"
)

// Profiler builds per-user preference profiles from interaction history.
type Profiler struct {
	interactions InteractionStore
	logger       *logrus.Logger
}

func NewProfiler(interactions InteractionStore, logger *logrus.Logger) *Profiler {
	return &Profiler{
		interactions: interactions,
		logger:       logger,
	}
}

// BuildProfile returns the centroid of every listing the user favorited,
// reviewed or rented. It returns nil when the user has no usable history or
// when the history could not be loaded.
func (p *Profiler) BuildProfile(ctx context.Context, userID uuid.UUID) *models.PreferenceProfile {
	history, err := p.history(ctx, userID)
	if err != nil {
		p.logger.WithError(err).WithField("user_id", userID).Error("Failed to load interaction history")
		return nil
	}

	if len(history) == 0 {
		p.logger.WithField("user_id", userID).Debug("User has no interaction history")
		return nil
	}

	c := newCentroid()
	for i := range history {
		if fv, ok := ExtractFeatures(&history[i]); ok {
			c.add(fv)
		}
	}

	profile := c.profile()
	if profile == nil {
		p.logger.WithField("user_id", userID).Debug("No usable listings in interaction history")
		return nil
	}

	p.logger.WithFields(logrus.Fields{
		"user_id":             userID,
		"estate_count":        profile.EstateCount,
		"preferred_locations": profile.PreferredLocations,
	}).Debug("Built preference profile")

	return profile
}

// history unions favorites, reviews and rentals by listing identity.
func (p *Profiler) history(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	favorites, err := p.interactions.FavoriteEstates(ctx, userID)
	if err != nil {
		return nil, err
	}
	reviewed, err := p.interactions.ReviewedEstates(ctx, userID)
	if err != nil {
		return nil, err
	}
	rented, err := p.interactions.RentedEstates(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{})
	var union []models.Estate
	for _, group := range [][]models.Estate{favorites, reviewed, rented} {
		for _, estate := range group {
			if _, dup := seen[estate.ID]; dup {
				continue
			}
			seen[estate.ID] = struct{}{}
			union = append(union, estate)
		}
	}
	return union, nil
}
