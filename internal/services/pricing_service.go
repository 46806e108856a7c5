package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/internal/recommend"
	"github.com/temcen/estaterec/pkg/models"
)

// PricingService fronts the price estimators with the result cache and metrics.
type PricingService struct {
	location *recommend.LocationPriceEstimator
	estate   *recommend.EstatePriceEstimator
	ranges   *recommend.PriceRangeReporter
	cache    Cache
	metrics  *EngineMetrics
	config   *config.PricingConfig
	logger   *logrus.Logger
}

func NewPricingService(
	location *recommend.LocationPriceEstimator,
	estate *recommend.EstatePriceEstimator,
	ranges *recommend.PriceRangeReporter,
	cache Cache,
	metrics *EngineMetrics,
	cfg *config.PricingConfig,
	logger *logrus.Logger,
) *PricingService {
	return &PricingService{
		location: location,
		estate:   estate,
		ranges:   ranges,
		cache:    cache,
		metrics:  metrics,
		config:   cfg,
		logger:   logger,
	}
}

func (s *PricingService) EstimateByLocation(ctx context.Context, loc models.UserLocation, features models.PropertyFeatures) *models.PriceRecommendationResult {
	key := locationPriceKey(loc.City, loc.Lat, loc.Lng, features.Bedroom, features.Bathroom, features.Floors)

	var cached models.PriceRecommendationResult
	if s.cache.Get(ctx, key, &cached) {
		s.metrics.RecordCacheLookup("price_by_location", true)
		return &cached
	}
	s.metrics.RecordCacheLookup("price_by_location", false)

	start := time.Now()
	result := s.location.EstimatePriceByLocation(ctx, loc, features)
	s.metrics.RecordPriceEstimate("price_by_location", result.Success, time.Since(start))

	if result.Success {
		s.cache.Set(ctx, key, result, s.config.CacheTTL)
	}
	return result
}

// EstimateForEstate is not cached: specs are free-form and rarely repeat.
func (s *PricingService) EstimateForEstate(ctx context.Context, spec models.EstateSpec) *models.EstatePriceEstimate {
	start := time.Now()
	result := s.estate.EstimatePriceForEstate(ctx, spec)
	s.metrics.RecordPriceEstimate("price_for_estate", result.Success, time.Since(start))
	return result
}

func (s *PricingService) EstimateForExistingEstate(ctx context.Context, estateID uuid.UUID) *models.EstatePriceEstimate {
	key := estatePriceKey(estateID)

	var cached models.EstatePriceEstimate
	if s.cache.Get(ctx, key, &cached) {
		s.metrics.RecordCacheLookup("price_for_existing_estate", true)
		return &cached
	}
	s.metrics.RecordCacheLookup("price_for_existing_estate", false)

	start := time.Now()
	result := s.estate.EstimatePriceForExistingEstate(ctx, estateID)
	s.metrics.RecordPriceEstimate("price_for_existing_estate", result.Success, time.Since(start))

	if result.Success {
		s.cache.Set(ctx, key, result, s.config.CacheTTL)
	}
	return result
}

func (s *PricingService) PriceRanges(ctx context.Context) *models.PriceRangeReport {
	var cached models.PriceRangeReport
	if s.cache.Get(ctx, priceRangesKey, &cached) {
		s.metrics.RecordCacheLookup("price_ranges", true)
		return &cached
	}
	s.metrics.RecordCacheLookup("price_ranges", false)

	start := time.Now()
	report := s.ranges.SuggestPriceRanges(ctx)
	s.metrics.RecordPriceEstimate("price_ranges", report.Overall.Count > 0, time.Since(start))

	if report.Overall.Count > 0 {
		s.cache.Set(ctx, priceRangesKey, report, s.config.CacheTTL)
	}
	return report
}

// NearbyEstates lists estates around loc. radiusKm <= 0 uses the configured radius.
func (s *PricingService) NearbyEstates(ctx context.Context, loc models.UserLocation, radiusKm float64) []models.NearbyEstate {
	if radiusKm <= 0 {
		radiusKm = s.config.RadiusKm
	}
	return s.location.EstatesWithinRadius(ctx, loc, radiusKm)
}

// InvalidateAll drops every cached pricing result.
func (s *PricingService) InvalidateAll(ctx context.Context) int {
	return s.cache.DeletePrefix(ctx, pricingKeyPrefix)
}
