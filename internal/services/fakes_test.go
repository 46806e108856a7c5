package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/temcen/estaterec/internal/recommend"
	"github.com/temcen/estaterec/pkg/models"
)

// memoryCache is an in-process Cache that round-trips values through JSON like Redis does.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{
		entries: make(map[string][]byte),
		ttls:    make(map[string]time.Duration),
	}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.entries[key] = data
	c.ttls[key] = ttl
}

func (c *memoryCache) DeletePrefix(ctx context.Context, prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
			delete(c.ttls, key)
			removed++
		}
	}
	return removed
}

func (c *memoryCache) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// fakeStore serves fixed estates and transactions, counting calls.
type fakeStore struct {
	mu           sync.Mutex
	estates      []models.Estate
	transactions []models.RentalTransaction
	err          error
	calls        int
}

func (s *fakeStore) record() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeStore) GetEstate(ctx context.Context, id uuid.UUID) (*models.Estate, error) {
	if err := s.record(); err != nil {
		return nil, err
	}
	for i := range s.estates {
		if s.estates[i].ID == id {
			estate := s.estates[i]
			return &estate, nil
		}
	}
	return nil, recommend.ErrEstateNotFound
}

func (s *fakeStore) FindEstates(ctx context.Context, filter models.EstateFilter) ([]models.Estate, error) {
	if err := s.record(); err != nil {
		return nil, err
	}
	var result []models.Estate
	for _, e := range s.estates {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.City != "" && recommend.NormalizeCity(e.Address.City) != filter.City {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *fakeStore) AllEstates(ctx context.Context) ([]models.Estate, error) {
	if err := s.record(); err != nil {
		return nil, err
	}
	return append([]models.Estate(nil), s.estates...), nil
}

func (s *fakeStore) ApprovedTransactionsBetween(ctx context.Context, from, to time.Time) ([]models.RentalTransaction, error) {
	if err := s.record(); err != nil {
		return nil, err
	}
	return s.transactions, nil
}

// noInteractions is a user with no history.
type noInteractions struct{}

func (noInteractions) FavoriteEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	return nil, nil
}

func (noInteractions) ReviewedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	return nil, nil
}

func (noInteractions) RentedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	return nil, nil
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRecommendationEvent(ctx context.Context, event models.RecommendationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockFavoriteWriter struct {
	mock.Mock
}

func (m *MockFavoriteWriter) AddFavorite(ctx context.Context, userID, estateID uuid.UUID) error {
	args := m.Called(ctx, userID, estateID)
	return args.Error(0)
}

func (m *MockFavoriteWriter) RemoveFavorite(ctx context.Context, userID, estateID uuid.UUID) error {
	args := m.Called(ctx, userID, estateID)
	return args.Error(0)
}

func (m *MockFavoriteWriter) RemoveEstate(ctx context.Context, estateID uuid.UUID) error {
	args := m.Called(ctx, estateID)
	return args.Error(0)
}

func listing(price float64, bedroom, bathroom, floors int, city string) models.Estate {
	return models.Estate{
		ID:    uuid.New(),
		Name:  city + " listing",
		Price: price,
		Property: models.Property{
			Bedroom:  intPtr(bedroom),
			Bathroom: intPtr(bathroom),
			Floors:   intPtr(floors),
		},
		Address: models.Address{City: city, Country: "Vietnam"},
		Status:  models.EstateStatusAvailable,
	}
}
