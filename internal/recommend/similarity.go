package recommend

import (
	"math"

	"github.com/temcen/estaterec/pkg/models"
)

// Profile similarity weights.
const (
	profilePriceWeight     = 0.30
	profileBedroomWeight   = 0.15
	profileBathroomWeight  = 0.15
	profileFloorsWeight    = 0.10
	profileRatingWeight    = 0.20
	profileLocationWeight  = 0.10
	generalPriceWeight     = 0.30
	generalAmenitiesWeight = 0.30
	generalRatingWeight    = 0.30
	generalLocationWeight  = 0.10
)

// Listing-vs-listing weights. The pool variant has no location term because
// the candidates were already filtered by location.
const (
	poolBedroomWeight    = 0.40
	poolBathroomWeight   = 0.30
	poolFloorsWeight     = 0.30
	estateBedroomWeight  = 0.25
	estateBathroomWeight = 0.15
	estateFloorsWeight   = 0.10
	estateLocationWeight = 0.30
)

const (
	maxRating         = 5.0
	bedroomTolerance  = 3.0
	bathroomTolerance = 2.0
	floorsTolerance   = 3.0
	defaultGeoDecayKm = 10.0
)

// BedroomCloseness is 1 for an exact match and reaches 0 at a difference of 3.
func BedroomCloseness(a, b float64) float64 {
	return closeness(a, b, bedroomTolerance)
}

// BathroomCloseness is 1 for an exact match and reaches 0 at a difference of 2.
func BathroomCloseness(a, b float64) float64 {
	return closeness(a, b, bathroomTolerance)
}

// FloorsCloseness is 1 for an exact match and reaches 0 at a difference of 3.
func FloorsCloseness(a, b float64) float64 {
	return closeness(a, b, floorsTolerance)
}

func closeness(a, b, tolerance float64) float64 {
	return math.Max(0, 1-math.Abs(a-b)/tolerance)
}

// PriceCloseness is relative to the reference price, which is floored at 1.
func PriceCloseness(candidate, reference float64) float64 {
	diff := math.Abs(candidate-reference) / math.Max(1, reference)
	return 1 / (1 + diff)
}

// ProfileSimilarity scores a candidate against a user's preference profile.
func ProfileSimilarity(profile *models.PreferenceProfile, fv models.FeatureVector) float64 {
	if profile == nil {
		return 0
	}

	rating := 1.0
	if fv.Rating < profile.Rating {
		rating = fv.Rating / math.Max(1, profile.Rating)
	}

	location := 0.0
	if containsCity(profile.PreferredLocations, fv.Location.City) {
		location = 1
	}

	return profilePriceWeight*PriceCloseness(fv.Price, profile.Price) +
		profileBedroomWeight*BedroomCloseness(fv.Bedrooms, profile.Bedrooms) +
		profileBathroomWeight*BathroomCloseness(fv.Bathrooms, profile.Bathrooms) +
		profileFloorsWeight*FloorsCloseness(fv.Floors, profile.Floors) +
		profileRatingWeight*rating +
		profileLocationWeight*location
}

// GeneralSimilarity scores a candidate against the marketplace-wide centroid.
// Room counts are averaged into a single amenities term and rating is
// rewarded on an absolute 0-5 scale.
func GeneralSimilarity(stats *models.GeneralStatistics, fv models.FeatureVector) float64 {
	if stats == nil {
		return 0
	}

	amenities := (BedroomCloseness(fv.Bedrooms, stats.Bedrooms) +
		BathroomCloseness(fv.Bathrooms, stats.Bathrooms) +
		FloorsCloseness(fv.Floors, stats.Floors)) / 3

	location := 0.0
	if containsCity(stats.PopularLocations, fv.Location.City) {
		location = 1
	}

	return generalPriceWeight*PriceCloseness(fv.Price, stats.Price) +
		generalAmenitiesWeight*amenities +
		generalRatingWeight*(fv.Rating/maxRating) +
		generalLocationWeight*location
}

// PoolSimilarity compares requested room counts with a candidate that is
// already known to be in the right area.
func PoolSimilarity(target models.PropertyFeatures, fv models.FeatureVector) float64 {
	return poolBedroomWeight*BedroomCloseness(fv.Bedrooms, float64(target.Bedroom)) +
		poolBathroomWeight*BathroomCloseness(fv.Bathrooms, float64(target.Bathroom)) +
		poolFloorsWeight*FloorsCloseness(fv.Floors, float64(target.Floors))
}

// EstateSimilarity compares two listings including their location. When both
// have coordinates the location term decays linearly to 0 at geoDecayKm,
// otherwise it is an exact city match.
func EstateSimilarity(target, candidate models.FeatureVector, geoDecayKm float64) float64 {
	if geoDecayKm <= 0 {
		geoDecayKm = defaultGeoDecayKm
	}

	location := 0.0
	switch {
	case target.HasCoordinates() && candidate.HasCoordinates():
		d := HaversineKm(target.Location.Lat, target.Location.Lng, candidate.Location.Lat, candidate.Location.Lng)
		location = math.Max(0, 1-d/geoDecayKm)
	case target.Location.City != "" && target.Location.City == candidate.Location.City:
		location = 1
	}

	return estateBedroomWeight*BedroomCloseness(candidate.Bedrooms, target.Bedrooms) +
		estateBathroomWeight*BathroomCloseness(candidate.Bathrooms, target.Bathrooms) +
		estateFloorsWeight*FloorsCloseness(candidate.Floors, target.Floors) +
		estateLocationWeight*location
}

func containsCity(cities []string, city string) bool {
	if city == "" {
		return false
	}
	for _, c := range cities {
		if c == city {
			return true
		}
	}
	return false
}
