package recommend

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/temcen/estaterec/pkg/models"
)

// ExtractFeatures converts a listing into its numeric feature vector. Missing
// property counts, rating and coordinates are zero-filled. The boolean is false
// when the listing carries no usable data at all.
func ExtractFeatures(estate *models.Estate) (models.FeatureVector, bool) {
	if estate == nil || estate.ID == uuid.Nil {
		return models.FeatureVector{}, false
	}

	fv := models.FeatureVector{
		Price:     estate.Price,
		Bedrooms:  intValue(estate.Property.Bedroom),
		Bathrooms: intValue(estate.Property.Bathroom),
		Floors:    intValue(estate.Property.Floors),
		Location: models.Location{
			City:    NormalizeCity(estate.Address.City),
			Country: estate.Address.Country,
		},
	}

	if estate.RatingStar != nil {
		fv.Rating = *estate.RatingStar
	}

	if lat, lng, ok := Coordinates(estate.Address); ok {
		fv.Location.Lat = lat
		fv.Location.Lng = lng
	}

	return fv, true
}

// NormalizeCity trims and NFC-normalises a city name so that composed and
// decomposed spellings of the same name compare equal.
func NormalizeCity(city string) string {
	return norm.NFC.String(strings.TrimSpace(city))
}

// Coordinates parses the textual latitude and longitude of an address. Both
// must be present and numeric.
func Coordinates(addr models.Address) (float64, float64, bool) {
	lat, ok := parseCoordinate(addr.Lat)
	if !ok {
		return 0, 0, false
	}
	lng, ok := parseCoordinate(addr.Lng)
	if !ok {
		return 0, 0, false
	}
	return lat, lng, true
}

func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func intValue(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}
