package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/temcen/estaterec/pkg/models"
)

func TestCloseness(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(a, b float64) float64
		a, b     float64
		expected float64
	}{
		{"bedroom exact", BedroomCloseness, 2, 2, 1},
		{"bedroom one apart", BedroomCloseness, 2, 3, 2.0 / 3},
		{"bedroom clamps at zero", BedroomCloseness, 1, 6, 0},
		{"bathroom one apart", BathroomCloseness, 1, 2, 0.5},
		{"bathroom clamps at zero", BathroomCloseness, 1, 3, 0},
		{"floors two apart", FloorsCloseness, 1, 3, 1.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.fn(tt.a, tt.b), 1e-9)
		})
	}
}

func TestBedroomCloseness_Monotonic(t *testing.T) {
	prev := BedroomCloseness(2, 2)
	for diff := 1.0; diff <= 3; diff++ {
		cur := BedroomCloseness(2, 2+diff)
		assert.Less(t, cur, prev, "diff %v", diff)
		prev = cur
	}
	assert.Equal(t, 0.0, BedroomCloseness(2, 6))
}

func TestPriceCloseness(t *testing.T) {
	assert.InDelta(t, 1.0, PriceCloseness(3e6, 3e6), 1e-9)
	assert.InDelta(t, 0.5, PriceCloseness(6e6, 3e6), 1e-9)
	// reference below 1 is floored to 1
	assert.InDelta(t, 1.0/3, PriceCloseness(2, 0), 1e-9)
}

func TestProfileSimilarity(t *testing.T) {
	profile := &models.PreferenceProfile{
		Price:              3e6,
		Bedrooms:           2,
		Bathrooms:          1,
		Floors:             1,
		Rating:             4,
		PreferredLocations: []string{"HCM"},
	}

	tests := []struct {
		name     string
		profile  *models.PreferenceProfile
		fv       models.FeatureVector
		expected float64
	}{
		{
			name:     "nil profile",
			profile:  nil,
			fv:       models.FeatureVector{Price: 3e6},
			expected: 0,
		},
		{
			name:    "perfect match",
			profile: profile,
			fv: models.FeatureVector{
				Price: 3e6, Bedrooms: 2, Bathrooms: 1, Floors: 1, Rating: 5,
				Location: models.Location{City: "HCM"},
			},
			expected: 1.0,
		},
		{
			name:    "lower rating and other city",
			profile: profile,
			fv: models.FeatureVector{
				Price: 3e6, Bedrooms: 2, Bathrooms: 1, Floors: 1, Rating: 2,
				Location: models.Location{City: "Hanoi"},
			},
			expected: 0.30 + 0.15 + 0.15 + 0.10 + 0.20*0.5,
		},
		{
			name:     "empty city never matches",
			profile:  &models.PreferenceProfile{Price: 3e6, PreferredLocations: []string{"HCM"}},
			fv:       models.FeatureVector{Price: 3e6},
			expected: 0.30 + 0.15 + 0.15 + 0.10 + 0.20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ProfileSimilarity(tt.profile, tt.fv), 1e-9)
		})
	}
}

func TestGeneralSimilarity(t *testing.T) {
	stats := &models.GeneralStatistics{
		Price:            5e6,
		Bedrooms:         2,
		Bathrooms:        1,
		Floors:           2,
		PopularLocations: []string{"Hanoi"},
	}

	fv := models.FeatureVector{
		Price: 5e6, Bedrooms: 2, Bathrooms: 1, Floors: 2, Rating: 2.5,
		Location: models.Location{City: "Hanoi"},
	}
	assert.InDelta(t, 0.30+0.30+0.30*0.5+0.10, GeneralSimilarity(stats, fv), 1e-9)

	fv.Location.City = "Hue"
	fv.Bedrooms = 5
	assert.InDelta(t, 0.30+0.30*(2.0/3)+0.30*0.5, GeneralSimilarity(stats, fv), 1e-9)

	assert.Equal(t, 0.0, GeneralSimilarity(nil, fv))
}

func TestPoolSimilarity(t *testing.T) {
	target := models.PropertyFeatures{Bedroom: 2, Bathroom: 1, Floors: 3}

	tests := []struct {
		name     string
		fv       models.FeatureVector
		expected float64
	}{
		{"exact", models.FeatureVector{Bedrooms: 2, Bathrooms: 1, Floors: 3}, 1.0},
		{"bedroom far off", models.FeatureVector{Bedrooms: 5, Bathrooms: 2, Floors: 3}, 0.45},
		{"only floors match", models.FeatureVector{Bedrooms: 5, Bathrooms: 3, Floors: 3}, 0.3},
		{"location is ignored", models.FeatureVector{Bedrooms: 2, Bathrooms: 1, Floors: 3, Location: models.Location{City: "Hue"}}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, PoolSimilarity(target, tt.fv), 1e-9)
		})
	}
}

func TestEstateSimilarity(t *testing.T) {
	rooms := models.FeatureVector{Bedrooms: 2, Bathrooms: 1, Floors: 3}

	withLocation := func(fv models.FeatureVector, loc models.Location) models.FeatureVector {
		fv.Location = loc
		return fv
	}

	tests := []struct {
		name      string
		target    models.FeatureVector
		candidate models.FeatureVector
		expected  float64
	}{
		{
			name:      "same city without coordinates",
			target:    withLocation(rooms, models.Location{City: "Hanoi"}),
			candidate: withLocation(rooms, models.Location{City: "Hanoi"}),
			expected:  0.8,
		},
		{
			name:      "different city without coordinates",
			target:    withLocation(rooms, models.Location{City: "Hanoi"}),
			candidate: withLocation(rooms, models.Location{City: "Hue"}),
			expected:  0.5,
		},
		{
			name:      "both cities empty",
			target:    rooms,
			candidate: rooms,
			expected:  0.5,
		},
		{
			name:      "same coordinates",
			target:    withLocation(rooms, models.Location{Lat: 21.0285, Lng: 105.8542}),
			candidate: withLocation(rooms, models.Location{City: "Other", Lat: 21.0285, Lng: 105.8542}),
			expected:  0.8,
		},
		{
			name:      "coordinates beyond decay distance",
			target:    withLocation(rooms, models.Location{City: "Hanoi", Lat: 21.0285, Lng: 105.8542}),
			candidate: withLocation(rooms, models.Location{City: "Hanoi", Lat: 21.2, Lng: 105.8542}),
			expected:  0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, EstateSimilarity(tt.target, tt.candidate, 10), 1e-9)
		})
	}
}

func TestEstateSimilarity_GeoDecay(t *testing.T) {
	target := models.FeatureVector{Location: models.Location{Lat: 21.0, Lng: 105.8}}
	near := models.FeatureVector{Location: models.Location{Lat: 21.02, Lng: 105.8}}
	far := models.FeatureVector{Location: models.Location{Lat: 21.05, Lng: 105.8}}

	base := 0.25 + 0.15 + 0.10
	nearScore := EstateSimilarity(target, near, 10)
	farScore := EstateSimilarity(target, far, 10)

	assert.Greater(t, nearScore, farScore)
	assert.Greater(t, farScore, base)

	d := HaversineKm(21.0, 105.8, 21.02, 105.8)
	assert.InDelta(t, base+0.30*(1-d/10), nearScore, 1e-9)
}
