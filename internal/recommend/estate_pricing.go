package recommend

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/pkg/models"
)

// EstatePriceEstimator prices a single property from its closest available
// listings, corrected by how recent rentals settled against asking prices.
type EstatePriceEstimator struct {
	estates      EstateStore
	transactions TransactionStore
	config       *config.PricingConfig
	logger       *logrus.Logger
	now          func() time.Time
}

func NewEstatePriceEstimator(estates EstateStore, transactions TransactionStore, cfg *config.PricingConfig, logger *logrus.Logger) *EstatePriceEstimator {
	return &EstatePriceEstimator{
		estates:      estates,
		transactions: transactions,
		config:       cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// EstimatePriceForEstate prices a property that is not listed yet.
func (e *EstatePriceEstimator) EstimatePriceForEstate(ctx context.Context, spec models.EstateSpec) *models.EstatePriceEstimate {
	return e.estimate(ctx, specFeatures(spec), uuid.Nil)
}

// EstimatePriceForExistingEstate prices a stored listing against every other
// available listing.
func (e *EstatePriceEstimator) EstimatePriceForExistingEstate(ctx context.Context, id uuid.UUID) *models.EstatePriceEstimate {
	estate, err := e.estates.GetEstate(ctx, id)
	if err != nil {
		if errors.Is(err, ErrEstateNotFound) {
			return &models.EstatePriceEstimate{Success: false, Message: MessageEstateNotFound}
		}
		e.logger.WithError(err).WithField("estate_id", id).Error("Failed to load estate for pricing")
		return &models.EstatePriceEstimate{Success: false, Message: MessageEstateLookupFailed}
	}

	target, ok := ExtractFeatures(estate)
	if !ok {
		return &models.EstatePriceEstimate{Success: false, Message: MessageEstateNotFound}
	}
	return e.estimate(ctx, target, estate.ID)
}

func (e *EstatePriceEstimator) estimate(ctx context.Context, target models.FeatureVector, exclude uuid.UUID) *models.EstatePriceEstimate {
	available, err := e.estates.FindEstates(ctx, models.EstateFilter{Status: models.EstateStatusAvailable})
	if err != nil {
		e.logger.WithError(err).Error("Failed to load available estates for pricing")
		return &models.EstatePriceEstimate{Success: false, Message: MessageInsufficientData}
	}

	comparables := make([]models.ComparableEstate, 0, len(available))
	for i := range available {
		if available[i].ID == exclude {
			continue
		}
		fv, ok := ExtractFeatures(&available[i])
		if !ok {
			continue
		}
		score := EstateSimilarity(target, fv, e.config.GeoDecayKm)
		if score <= e.config.EstateMinScore {
			continue
		}
		comparables = append(comparables, models.ComparableEstate{
			Estate:   available[i],
			Score:    score,
			Features: fv,
		})
	}

	if len(comparables) == 0 {
		e.logger.WithField("candidates", len(available)).Info("No comparable estates above threshold")
		return &models.EstatePriceEstimate{Success: false, Message: MessageInsufficientData}
	}

	sort.SliceStable(comparables, func(i, j int) bool {
		return comparables[i].Score > comparables[j].Score
	})
	if e.config.TopK > 0 && len(comparables) > e.config.TopK {
		comparables = comparables[:e.config.TopK]
	}

	prices := make([]float64, len(comparables))
	weights := make([]float64, len(comparables))
	for i, c := range comparables {
		prices[i] = c.Estate.Price
		weights[i] = c.Score
	}
	weighted := stat.Mean(prices, weights)

	trend := e.MarketAdjustment(ctx)
	adjusted := weighted * trend.AdjustmentFactor

	e.logger.WithFields(logrus.Fields{
		"comparables":       len(comparables),
		"weighted_average":  weighted,
		"adjustment_factor": trend.AdjustmentFactor,
		"estimated_price":   adjusted,
	}).Info("Generated estate price estimate")

	return &models.EstatePriceEstimate{
		Success:         true,
		EstimatedPrice:  math.Round(adjusted),
		WeightedAverage: weighted,
		PriceRange: &models.PriceRange{
			Min:     math.Floor(adjusted * (1 - e.config.EstateRangeRatio)),
			Max:     math.Ceil(adjusted * (1 + e.config.EstateRangeRatio)),
			Average: math.Round(adjusted),
		},
		Comparables: comparables,
		MarketTrend: &trend,
	}
}

// MarketAdjustment averages rentalPrice/listingPrice over approved rentals in
// the market window. Without usable transactions the factor is 1.
func (e *EstatePriceEstimator) MarketAdjustment(ctx context.Context) models.MarketTrend {
	trend := models.MarketTrend{
		AdjustmentFactor: 1,
		WindowDays:       int(e.config.MarketWindow / (24 * time.Hour)),
	}

	to := e.now()
	from := to.Add(-e.config.MarketWindow)

	txs, err := e.transactions.ApprovedTransactionsBetween(ctx, from, to)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to load recent transactions, skipping market adjustment")
		return trend
	}

	ratios := make([]float64, 0, len(txs))
	for _, tx := range txs {
		if tx.RentalPrice <= 0 || tx.Estate == nil || tx.Estate.Price <= 0 {
			continue
		}
		ratios = append(ratios, tx.RentalPrice/tx.Estate.Price)
	}

	trend.TransactionsAnalyzed = len(ratios)
	if len(ratios) > 0 {
		trend.AdjustmentFactor = stat.Mean(ratios, nil)
	}
	return trend
}

func specFeatures(spec models.EstateSpec) models.FeatureVector {
	fv := models.FeatureVector{
		Bedrooms:  float64(spec.Bedroom),
		Bathrooms: float64(spec.Bathroom),
		Floors:    float64(spec.Floors),
		Location: models.Location{
			City:    NormalizeCity(spec.City),
			Country: spec.Country,
		},
	}
	if spec.Lat != nil && spec.Lng != nil {
		fv.Location.Lat = *spec.Lat
		fv.Location.Lng = *spec.Lng
	}
	return fv
}
