package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/estaterec/pkg/models"
)

const (
	hanoiLat = 21.0285
	hanoiLng = 105.8542
	hcmLat   = 10.8231
	hcmLng   = 106.6297
)

var hanoi = models.UserLocation{City: "Hanoi", Lat: hanoiLat, Lng: hanoiLng}

func newTestLocationEstimator(store *memoryStore) *LocationPriceEstimator {
	return NewLocationPriceEstimator(store, testPricingConfig(), testLogger())
}

func TestEstimatePriceByLocation_CityPool(t *testing.T) {
	var estates []models.Estate
	for _, price := range []float64{5e6, 6e6, 7e6, 8e6, 9e6} {
		estates = append(estates, newEstate(price, 2, 1, 3, "Hanoi"))
	}
	estimator := newTestLocationEstimator(newMemoryStore(estates...))

	result := estimator.EstimatePriceByLocation(context.Background(), hanoi, models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3})

	require.True(t, result.Success)
	require.NotNil(t, result.RecommendedPriceRange)
	assert.Equal(t, 7e6, result.RecommendedPriceRange.Average)
	assert.Equal(t, 5.95e6, result.RecommendedPriceRange.Min)
	assert.Equal(t, 8.05e6, result.RecommendedPriceRange.Max)
	assert.Equal(t, 5, result.SimilarCount)
	assert.Equal(t, "Hanoi", result.LocationInfo)
	assert.Equal(t, &models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3}, result.PropertyFeatures)
	assert.Contains(t, result.Explanation, "5 similar estates in Hanoi")
	assert.Contains(t, result.Explanation, "2 bedrooms, 3 floors, 1 bathrooms")
}

func TestEstimatePriceByLocation_FallsBackToAllPassingComparables(t *testing.T) {
	excluded := newEstate(100e6, 5, 3, 3, "Hanoi")
	store := newMemoryStore(
		newEstate(6e6, 2, 1, 3, "Hanoi"),
		newEstate(8e6, 2, 1, 3, "Hanoi"),
		newEstate(10e6, 5, 2, 3, "Hanoi"),
		excluded,
	)

	result := newTestLocationEstimator(store).EstimatePriceByLocation(context.Background(), hanoi, models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3})

	require.True(t, result.Success)
	assert.Equal(t, 3, result.SimilarCount)
	assert.Equal(t, 8e6, result.RecommendedPriceRange.Average)
	assert.Equal(t, 6.8e6, result.RecommendedPriceRange.Min)
	assert.Equal(t, 9.2e6, result.RecommendedPriceRange.Max)
}

func TestEstimatePriceByLocation_PrefersHighlyRelevant(t *testing.T) {
	store := newMemoryStore(
		newEstate(6e6, 2, 1, 3, "Hanoi"),
		newEstate(7e6, 2, 1, 3, "Hanoi"),
		newEstate(8e6, 2, 1, 3, "Hanoi"),
		newEstate(50e6, 5, 2, 3, "Hanoi"),
	)

	result := newTestLocationEstimator(store).EstimatePriceByLocation(context.Background(), hanoi, models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3})

	require.True(t, result.Success)
	assert.Equal(t, 3, result.SimilarCount)
	assert.Equal(t, 7e6, result.RecommendedPriceRange.Average)
}

func TestEstimatePriceByLocation_CapsComparables(t *testing.T) {
	var estates []models.Estate
	for i := 0; i < 15; i++ {
		estates = append(estates, newEstate(5e6, 2, 1, 3, "Hanoi"))
	}

	result := newTestLocationEstimator(newMemoryStore(estates...)).EstimatePriceByLocation(context.Background(), hanoi, models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3})

	require.True(t, result.Success)
	assert.Equal(t, 10, result.SimilarCount)
}

func TestEstimatePriceByLocation_Failures(t *testing.T) {
	tests := []struct {
		name     string
		store    *memoryStore
		loc      models.UserLocation
		expected string
	}{
		{
			name:     "no listings anywhere",
			store:    newMemoryStore(),
			loc:      hanoi,
			expected: MessageNoListingsInArea,
		},
		{
			name:     "listings only far away",
			store:    newMemoryStore(newEstate(5e6, 2, 1, 3, "HCM", withCoordinates(hcmLat, hcmLng))),
			loc:      hanoi,
			expected: MessageNoListingsInArea,
		},
		{
			name: "nothing comparable",
			store: newMemoryStore(
				newEstate(5e6, 6, 4, 8, "Hanoi"),
				newEstate(5e6, 6, 4, 8, "Hanoi"),
				newEstate(5e6, 6, 4, 8, "Hanoi"),
			),
			loc:      hanoi,
			expected: MessageInsufficientData,
		},
		{
			name: "store failure",
			store: func() *memoryStore {
				s := newMemoryStore(newEstate(5e6, 2, 1, 3, "Hanoi"))
				s.err = errors.New("connection reset")
				return s
			}(),
			loc:      hanoi,
			expected: MessageNoListingsInArea,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newTestLocationEstimator(tt.store).EstimatePriceByLocation(context.Background(), tt.loc, models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3})
			assert.False(t, result.Success)
			assert.Equal(t, tt.expected, result.Message)
			assert.Nil(t, result.RecommendedPriceRange)
		})
	}
}

func TestEstimatePriceByLocation_LocationInfoFromTopComparable(t *testing.T) {
	store := newMemoryStore(
		newEstate(5e6, 2, 1, 3, "Hanoi", withCoordinates(hanoiLat+0.01, hanoiLng)),
		newEstate(6e6, 2, 1, 3, "Hanoi", withCoordinates(hanoiLat+0.02, hanoiLng)),
	)
	loc := models.UserLocation{Lat: hanoiLat, Lng: hanoiLng}

	result := newTestLocationEstimator(store).EstimatePriceByLocation(context.Background(), loc, models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3})

	require.True(t, result.Success)
	assert.Equal(t, "Hanoi", result.LocationInfo)
}

func TestEstimatePriceByLocation_RangeContainment(t *testing.T) {
	pools := [][]float64{
		{5e6, 6e6, 7e6},
		{1e6, 1e6, 30e6},
		{3_333_333, 3_500_001, 3_499_999, 4_100_000},
		{7e6, 7e6, 7e6, 7e6},
	}

	for _, prices := range pools {
		var estates []models.Estate
		for _, p := range prices {
			estates = append(estates, newEstate(p, 2, 1, 3, "Hanoi"))
		}

		result := newTestLocationEstimator(newMemoryStore(estates...)).EstimatePriceByLocation(context.Background(), hanoi, models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3})
		require.True(t, result.Success)

		r := result.RecommendedPriceRange
		minPrice, maxPrice := prices[0], prices[0]
		for _, p := range prices {
			minPrice = min(minPrice, p)
			maxPrice = max(maxPrice, p)
		}
		assert.LessOrEqual(t, r.Min, r.Average, "%v", prices)
		assert.LessOrEqual(t, r.Average, r.Max, "%v", prices)
		assert.GreaterOrEqual(t, r.Min, minPrice-0.5, "%v", prices)
		assert.LessOrEqual(t, r.Max, maxPrice+0.5, "%v", prices)
	}
}

func TestEstatesWithinRadius(t *testing.T) {
	tenKm := newEstate(5e6, 2, 1, 3, "Hanoi", withCoordinates(hanoiLat+0.09, hanoiLng))
	fiveKm := newEstate(5e6, 2, 1, 3, "", withCoordinates(hanoiLat+0.045, hanoiLng))
	farAway := newEstate(5e6, 2, 1, 3, "HCM", withCoordinates(hcmLat, hcmLng))
	noCoordinates := newEstate(5e6, 2, 1, 3, "")

	estimator := newTestLocationEstimator(newMemoryStore(tenKm, farAway, noCoordinates, fiveKm))

	nearby := estimator.EstatesByLocation(context.Background(), hanoi)

	require.Len(t, nearby, 2)
	assert.Equal(t, fiveKm.ID, nearby[0].Estate.ID)
	assert.Equal(t, tenKm.ID, nearby[1].Estate.ID)
	assert.InDelta(t, 5.0, nearby[0].DistanceKm, 0.1)
	assert.InDelta(t, 10.0, nearby[1].DistanceKm, 0.1)

	wide := estimator.EstatesWithinRadius(context.Background(), hanoi, 2000)
	require.Len(t, wide, 3)
	assert.Equal(t, farAway.ID, wide[2].Estate.ID)
}

func TestEstatesWithinRadius_CityMatchesWithoutCoordinatesAreKept(t *testing.T) {
	cityOnly := newEstate(5e6, 2, 1, 3, "Hanoi")
	store := newMemoryStore(cityOnly)

	nearby := newTestLocationEstimator(store).EstatesByLocation(context.Background(), hanoi)

	require.Len(t, nearby, 1)
	assert.Equal(t, cityOnly.ID, nearby[0].Estate.ID)
	assert.Equal(t, 0.0, nearby[0].DistanceKm)
}

func TestEstatesWithinRadius_NormalizesCity(t *testing.T) {
	composed := "H\u00e0 N\u1ed9i"
	decomposed := "Ha\u0300 No\u0323\u0302i"
	store := newMemoryStore(
		newEstate(5e6, 2, 1, 3, composed),
		newEstate(5e6, 2, 1, 3, composed),
		newEstate(5e6, 2, 1, 3, composed),
	)

	nearby := newTestLocationEstimator(store).EstatesByLocation(context.Background(), models.UserLocation{City: decomposed, Lat: hanoiLat, Lng: hanoiLng})

	assert.Len(t, nearby, 3)
}

func TestMillions(t *testing.T) {
	assert.Equal(t, "6", millions(5.95e6))
	assert.Equal(t, "7.5", millions(7_480_000))
	assert.Equal(t, "0.2", millions(150_000))
}
