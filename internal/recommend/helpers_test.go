package recommend

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testPricingConfig() *config.PricingConfig {
	cfg := config.DefaultPricingConfig()
	return &cfg
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

type estateOpt func(*models.Estate)

func newEstate(price float64, bedroom, bathroom, floors int, city string, opts ...estateOpt) models.Estate {
	e := models.Estate{
		ID:     uuid.New(),
		Name:   "estate",
		Price:  price,
		Status: models.EstateStatusAvailable,
		Property: models.Property{
			Bedroom:  intPtr(bedroom),
			Bathroom: intPtr(bathroom),
			Floors:   intPtr(floors),
		},
		Address: models.Address{City: city, Country: "Vietnam"},
	}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func withCoordinates(lat, lng float64) estateOpt {
	return func(e *models.Estate) {
		e.Address.Lat = strconv.FormatFloat(lat, 'f', -1, 64)
		e.Address.Lng = strconv.FormatFloat(lng, 'f', -1, 64)
	}
}

func withRating(r float64) estateOpt {
	return func(e *models.Estate) { e.RatingStar = floatPtr(r) }
}

func withStatus(s models.EstateStatus) estateOpt {
	return func(e *models.Estate) { e.Status = s }
}

func withPopularity(likes, reviews int) estateOpt {
	return func(e *models.Estate) {
		for i := 0; i < likes; i++ {
			e.Likes = append(e.Likes, uuid.New())
		}
		for i := 0; i < reviews; i++ {
			e.Reviews = append(e.Reviews, uuid.New())
		}
	}
}

// memoryStore is an in-memory EstateStore, InteractionStore and TransactionStore.
type memoryStore struct {
	estates      []models.Estate
	favorites    map[uuid.UUID][]models.Estate
	reviewed     map[uuid.UUID][]models.Estate
	rented       map[uuid.UUID][]models.Estate
	transactions []models.RentalTransaction
	err          error
}

func newMemoryStore(estates ...models.Estate) *memoryStore {
	return &memoryStore{
		estates:   estates,
		favorites: make(map[uuid.UUID][]models.Estate),
		reviewed:  make(map[uuid.UUID][]models.Estate),
		rented:    make(map[uuid.UUID][]models.Estate),
	}
}

func (m *memoryStore) GetEstate(ctx context.Context, id uuid.UUID) (*models.Estate, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.estates {
		if m.estates[i].ID == id {
			e := m.estates[i]
			return &e, nil
		}
	}
	return nil, ErrEstateNotFound
}

func (m *memoryStore) FindEstates(ctx context.Context, filter models.EstateFilter) ([]models.Estate, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.Estate
	for _, e := range m.estates {
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if filter.City != "" && NormalizeCity(e.Address.City) != filter.City {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryStore) AllEstates(ctx context.Context) ([]models.Estate, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.estates, nil
}

func (m *memoryStore) FavoriteEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	return m.favorites[userID], m.err
}

func (m *memoryStore) ReviewedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	return m.reviewed[userID], m.err
}

func (m *memoryStore) RentedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	return m.rented[userID], m.err
}

func (m *memoryStore) ApprovedTransactionsBetween(ctx context.Context, from, to time.Time) ([]models.RentalTransaction, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.RentalTransaction
	for _, tx := range m.transactions {
		if tx.CreatedAt.Before(from) || tx.CreatedAt.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

// MockInteractionStore records calls so tests can assert on fetch behaviour.
type MockInteractionStore struct {
	mock.Mock
}

func (m *MockInteractionStore) FavoriteEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Estate), args.Error(1)
}

func (m *MockInteractionStore) ReviewedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Estate), args.Error(1)
}

func (m *MockInteractionStore) RentedEstates(ctx context.Context, userID uuid.UUID) ([]models.Estate, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Estate), args.Error(1)
}
