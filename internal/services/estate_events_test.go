package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/estaterec/internal/messaging"
)

type processorFixture struct {
	processor *EstateEventProcessor
	favorites *MockFavoriteWriter
	cache     *memoryCache
	userA     uuid.UUID
	userB     uuid.UUID
}

// newProcessorFixture seeds cached recommendations for two users and one pricing entry.
func newProcessorFixture() *processorFixture {
	ctx := context.Background()
	cache := newMemoryCache()
	favorites := new(MockFavoriteWriter)
	store := &fakeStore{estates: hanoiListings()}
	logger := testLogger()

	recommendations := newTestRecommendationService(store, cache, nil)
	pricing := newTestPricingService(store, cache)

	f := &processorFixture{
		processor: NewEstateEventProcessor(favorites, recommendations, pricing, NewEngineMetrics(logger), logger),
		favorites: favorites,
		cache:     cache,
		userA:     uuid.New(),
		userB:     uuid.New(),
	}

	cache.Set(ctx, recommendationKey(f.userA, 10), []string{}, time.Minute)
	cache.Set(ctx, recommendationKey(f.userB, 10), []string{}, time.Minute)
	cache.Set(ctx, priceRangesKey, []string{}, time.Minute)
	return f
}

func (f *processorFixture) has(key string) bool {
	for _, k := range f.cache.keys() {
		if k == key {
			return true
		}
	}
	return false
}

func TestEstateEventProcessor_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("estate updates drop every cached result", func(t *testing.T) {
		f := newProcessorFixture()

		err := f.processor.Handle(ctx, messaging.EstateEvent{Type: messaging.EventEstateUpdated, EstateID: uuid.New()})
		require.NoError(t, err)
		assert.Empty(t, f.cache.keys())
		f.favorites.AssertNotCalled(t, "RemoveEstate", mock.Anything, mock.Anything)
	})

	t.Run("estate deletion removes the graph node", func(t *testing.T) {
		f := newProcessorFixture()
		estateID := uuid.New()
		f.favorites.On("RemoveEstate", mock.Anything, estateID).Return(nil).Once()

		err := f.processor.Handle(ctx, messaging.EstateEvent{Type: messaging.EventEstateDeleted, EstateID: estateID})
		require.NoError(t, err)
		assert.Empty(t, f.cache.keys())
		f.favorites.AssertExpectations(t)
	})

	t.Run("graph failure is returned and caches are kept", func(t *testing.T) {
		f := newProcessorFixture()
		estateID := uuid.New()
		f.favorites.On("RemoveEstate", mock.Anything, estateID).Return(errors.New("graph down"))

		err := f.processor.Handle(ctx, messaging.EstateEvent{Type: messaging.EventEstateDeleted, EstateID: estateID})
		require.Error(t, err)
		assert.Len(t, f.cache.keys(), 3)
	})

	t.Run("favorite added touches only that user", func(t *testing.T) {
		f := newProcessorFixture()
		estateID := uuid.New()
		f.favorites.On("AddFavorite", mock.Anything, f.userA, estateID).Return(nil).Once()

		err := f.processor.Handle(ctx, messaging.EstateEvent{Type: messaging.EventFavoriteAdded, UserID: f.userA, EstateID: estateID})
		require.NoError(t, err)
		assert.False(t, f.has(recommendationKey(f.userA, 10)))
		assert.True(t, f.has(recommendationKey(f.userB, 10)))
		assert.True(t, f.has(priceRangesKey))
		f.favorites.AssertExpectations(t)
	})

	t.Run("favorite removed", func(t *testing.T) {
		f := newProcessorFixture()
		estateID := uuid.New()
		f.favorites.On("RemoveFavorite", mock.Anything, f.userB, estateID).Return(nil).Once()

		err := f.processor.Handle(ctx, messaging.EstateEvent{Type: messaging.EventFavoriteRemoved, UserID: f.userB, EstateID: estateID})
		require.NoError(t, err)
		assert.True(t, f.has(recommendationKey(f.userA, 10)))
		assert.False(t, f.has(recommendationKey(f.userB, 10)))
		f.favorites.AssertExpectations(t)
	})

	t.Run("review created", func(t *testing.T) {
		f := newProcessorFixture()

		err := f.processor.Handle(ctx, messaging.EstateEvent{Type: messaging.EventReviewCreated, UserID: f.userA})
		require.NoError(t, err)
		assert.False(t, f.has(recommendationKey(f.userA, 10)))
		assert.True(t, f.has(priceRangesKey))
	})

	t.Run("approved transaction refreshes pricing", func(t *testing.T) {
		f := newProcessorFixture()

		err := f.processor.Handle(ctx, messaging.EstateEvent{Type: messaging.EventTransactionApproved, UserID: f.userA})
		require.NoError(t, err)
		assert.False(t, f.has(recommendationKey(f.userA, 10)))
		assert.True(t, f.has(recommendationKey(f.userB, 10)))
		assert.False(t, f.has(priceRangesKey))
	})

	t.Run("unknown events are ignored", func(t *testing.T) {
		f := newProcessorFixture()

		err := f.processor.Handle(ctx, messaging.EstateEvent{Type: "estate.archived"})
		require.NoError(t, err)
		assert.Len(t, f.cache.keys(), 3)
	})
}
