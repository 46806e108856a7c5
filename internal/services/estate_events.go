package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/messaging"
)

// FavoriteWriter mirrors favorite changes into the favorites graph.
type FavoriteWriter interface {
	AddFavorite(ctx context.Context, userID, estateID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, estateID uuid.UUID) error
	RemoveEstate(ctx context.Context, estateID uuid.UUID) error
}

// EstateEventProcessor keeps derived state in step with marketplace changes:
// the favorites graph and the cached recommendation and pricing results.
type EstateEventProcessor struct {
	favorites       FavoriteWriter
	recommendations *RecommendationService
	pricing         *PricingService
	metrics         *EngineMetrics
	logger          *logrus.Logger
}

func NewEstateEventProcessor(
	favorites FavoriteWriter,
	recommendations *RecommendationService,
	pricing *PricingService,
	metrics *EngineMetrics,
	logger *logrus.Logger,
) *EstateEventProcessor {
	return &EstateEventProcessor{
		favorites:       favorites,
		recommendations: recommendations,
		pricing:         pricing,
		metrics:         metrics,
		logger:          logger,
	}
}

// Handle applies one event. Graph write failures are returned so the event is retried.
func (p *EstateEventProcessor) Handle(ctx context.Context, event messaging.EstateEvent) error {
	removed := 0

	switch event.Type {
	case messaging.EventEstateCreated, messaging.EventEstateUpdated:
		removed += p.pricing.InvalidateAll(ctx)
		removed += p.recommendations.InvalidateAll(ctx)

	case messaging.EventEstateDeleted:
		if err := p.favorites.RemoveEstate(ctx, event.EstateID); err != nil {
			return fmt.Errorf("failed to remove estate %s from graph: %w", event.EstateID, err)
		}
		removed += p.pricing.InvalidateAll(ctx)
		removed += p.recommendations.InvalidateAll(ctx)

	case messaging.EventFavoriteAdded:
		if err := p.favorites.AddFavorite(ctx, event.UserID, event.EstateID); err != nil {
			return fmt.Errorf("failed to add favorite: %w", err)
		}
		removed += p.recommendations.InvalidateUser(ctx, event.UserID)

	case messaging.EventFavoriteRemoved:
		if err := p.favorites.RemoveFavorite(ctx, event.UserID, event.EstateID); err != nil {
			return fmt.Errorf("failed to remove favorite: %w", err)
		}
		removed += p.recommendations.InvalidateUser(ctx, event.UserID)

	case messaging.EventReviewCreated:
		removed += p.recommendations.InvalidateUser(ctx, event.UserID)

	case messaging.EventTransactionApproved:
		removed += p.recommendations.InvalidateUser(ctx, event.UserID)
		removed += p.pricing.InvalidateAll(ctx)

	default:
		p.logger.WithField("type", event.Type).Debug("Ignoring unknown estate event")
		return nil
	}

	p.metrics.RecordInvalidation(event.Type, removed)

	p.logger.WithFields(logrus.Fields{
		"event_id":  event.EventID,
		"type":      event.Type,
		"estate_id": event.EstateID,
		"removed":   removed,
	}).Info("Applied estate event")

	return nil
}
