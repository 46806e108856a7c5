package recommend

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/pkg/models"
)

const (
	MessageNoListingsInArea   = "no listings in area"
	MessageInsufficientData   = "insufficient comparable data"
	MessageEstateNotFound     = "estate not found"
	MessageEstateLookupFailed = "estate could not be loaded"
	defaultLocationInfo       = "your area"
)

// LocationPriceEstimator suggests a price band for a property at a given
// location from the listings around it.
type LocationPriceEstimator struct {
	estates EstateStore
	config  *config.PricingConfig
	logger  *logrus.Logger
}

func NewLocationPriceEstimator(estates EstateStore, cfg *config.PricingConfig, logger *logrus.Logger) *LocationPriceEstimator {
	return &LocationPriceEstimator{
		estates: estates,
		config:  cfg,
		logger:  logger,
	}
}

type poolMatch struct {
	estate models.Estate
	score  float64
}

// EstimatePriceByLocation derives a recommended price range from comparable
// listings near loc. No-data conditions are reported through Success=false.
func (e *LocationPriceEstimator) EstimatePriceByLocation(ctx context.Context, loc models.UserLocation, features models.PropertyFeatures) *models.PriceRecommendationResult {
	nearby := e.EstatesByLocation(ctx, loc)
	if len(nearby) == 0 {
		return &models.PriceRecommendationResult{Success: false, Message: MessageNoListingsInArea}
	}

	matches := e.scorePool(nearby, features)
	if len(matches) == 0 {
		return &models.PriceRecommendationResult{Success: false, Message: MessageInsufficientData}
	}

	chosen := e.preferHighlyRelevant(matches)

	prices := make([]float64, len(chosen))
	for i, m := range chosen {
		prices[i] = m.estate.Price
	}
	minPrice := floats.Min(prices)
	maxPrice := floats.Max(prices)
	avgPrice := stat.Mean(prices, nil)

	priceRange := &models.PriceRange{
		Min:     math.Round(math.Max(minPrice, avgPrice*(1-e.config.LocationRangeRatio))),
		Max:     math.Round(math.Min(maxPrice, avgPrice*(1+e.config.LocationRangeRatio))),
		Average: math.Round(avgPrice),
	}

	locationInfo := NormalizeCity(loc.City)
	if locationInfo == "" {
		locationInfo = defaultLocationInfo
		if city := NormalizeCity(chosen[0].estate.Address.City); city != "" {
			locationInfo = city
		}
	}

	e.logger.WithFields(logrus.Fields{
		"location":    locationInfo,
		"pool_size":   len(nearby),
		"comparables": len(chosen),
		"min":         priceRange.Min,
		"max":         priceRange.Max,
		"average":     priceRange.Average,
	}).Info("Generated location price recommendation")

	return &models.PriceRecommendationResult{
		Success:               true,
		RecommendedPriceRange: priceRange,
		SimilarCount:          len(chosen),
		LocationInfo:          locationInfo,
		PropertyFeatures:      &features,
		Explanation: fmt.Sprintf("Suggested price %s - %s million based on %d similar estates in %s (%d bedrooms, %d floors, %d bathrooms)",
			millions(priceRange.Min), millions(priceRange.Max), len(chosen), locationInfo,
			features.Bedroom, features.Floors, features.Bathroom),
	}
}

// EstatesByLocation returns the comparison pool for loc using the configured radius.
func (e *LocationPriceEstimator) EstatesByLocation(ctx context.Context, loc models.UserLocation) []models.NearbyEstate {
	return e.EstatesWithinRadius(ctx, loc, e.config.RadiusKm)
}

// EstatesWithinRadius returns the listings in loc's city. When the city has
// fewer than MinCityMatches listings the result is widened with every listing
// within radiusKm and the merged set is ordered by distance.
func (e *LocationPriceEstimator) EstatesWithinRadius(ctx context.Context, loc models.UserLocation, radiusKm float64) []models.NearbyEstate {
	logger := e.logger.WithFields(logrus.Fields{
		"city":      loc.City,
		"lat":       loc.Lat,
		"lng":       loc.Lng,
		"radius_km": radiusKm,
	})

	var byCity []models.Estate
	if city := NormalizeCity(loc.City); city != "" {
		found, err := e.estates.FindEstates(ctx, models.EstateFilter{City: city})
		if err != nil {
			logger.WithError(err).Error("Failed to load estates by city")
			return nil
		}
		byCity = found
	}

	if len(byCity) >= e.config.MinCityMatches {
		nearby := make([]models.NearbyEstate, len(byCity))
		for i, estate := range byCity {
			nearby[i] = models.NearbyEstate{Estate: estate, DistanceKm: distanceTo(loc, estate)}
		}
		logger.WithField("count", len(nearby)).Debug("Using city matches")
		return nearby
	}

	if loc.Lat == 0 || loc.Lng == 0 {
		logger.Warn("Missing coordinates, cannot widen search")
		return cityOnly(loc, byCity)
	}

	all, err := e.estates.AllEstates(ctx)
	if err != nil {
		logger.WithError(err).Error("Failed to load estates for radius search")
		return cityOnly(loc, byCity)
	}

	seen := make(map[uuid.UUID]struct{}, len(byCity))
	nearby := make([]models.NearbyEstate, 0, len(byCity))
	for _, estate := range byCity {
		seen[estate.ID] = struct{}{}
		nearby = append(nearby, models.NearbyEstate{Estate: estate, DistanceKm: distanceTo(loc, estate)})
	}

	for _, estate := range all {
		if _, dup := seen[estate.ID]; dup {
			continue
		}
		lat, lng, ok := Coordinates(estate.Address)
		if !ok {
			continue
		}
		d := HaversineKm(loc.Lat, loc.Lng, lat, lng)
		if d > radiusKm {
			continue
		}
		seen[estate.ID] = struct{}{}
		nearby = append(nearby, models.NearbyEstate{Estate: estate, DistanceKm: d})
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})

	logger.WithFields(logrus.Fields{
		"city_matches": len(byCity),
		"count":        len(nearby),
	}).Debug("Widened search by radius")

	return nearby
}

func (e *LocationPriceEstimator) scorePool(nearby []models.NearbyEstate, features models.PropertyFeatures) []poolMatch {
	matches := make([]poolMatch, 0, len(nearby))
	for i := range nearby {
		fv, ok := ExtractFeatures(&nearby[i].Estate)
		if !ok {
			continue
		}
		score := PoolSimilarity(features, fv)
		if score <= e.config.PoolMinScore {
			continue
		}
		matches = append(matches, poolMatch{estate: nearby[i].Estate, score: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if e.config.MaxComparables > 0 && len(matches) > e.config.MaxComparables {
		matches = matches[:e.config.MaxComparables]
	}
	return matches
}

// preferHighlyRelevant narrows matches to the highly relevant subset when it
// is large enough. matches is sorted descending, so the subset is a prefix.
func (e *LocationPriceEstimator) preferHighlyRelevant(matches []poolMatch) []poolMatch {
	n := 0
	for n < len(matches) && matches[n].score > e.config.HighRelevanceScore {
		n++
	}
	if n >= e.config.MinRelevantComparables {
		return matches[:n]
	}
	return matches
}

func distanceTo(loc models.UserLocation, estate models.Estate) float64 {
	if loc.Lat == 0 || loc.Lng == 0 {
		return 0
	}
	lat, lng, ok := Coordinates(estate.Address)
	if !ok {
		return 0
	}
	return HaversineKm(loc.Lat, loc.Lng, lat, lng)
}

func cityOnly(loc models.UserLocation, estates []models.Estate) []models.NearbyEstate {
	nearby := make([]models.NearbyEstate, len(estates))
	for i, estate := range estates {
		nearby[i] = models.NearbyEstate{Estate: estate, DistanceKm: distanceTo(loc, estate)}
	}
	return nearby
}

// millions renders a price in millions with at most one decimal.
func millions(price float64) string {
	return strconv.FormatFloat(math.Round(price/1e6*10)/10, 'f', -1, 64)
}
