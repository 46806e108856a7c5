package recommend

import (
	"context"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/temcen/estaterec/pkg/models"
)

// PriceRangeReporter summarises asking prices of available listings.
type PriceRangeReporter struct {
	estates EstateStore
	logger  *logrus.Logger
}

func NewPriceRangeReporter(estates EstateStore, logger *logrus.Logger) *PriceRangeReporter {
	return &PriceRangeReporter{
		estates: estates,
		logger:  logger,
	}
}

// SuggestPriceRanges groups available listings by bedroom count and by city.
// Listings without a city only count towards the overall and bedroom groups.
func (r *PriceRangeReporter) SuggestPriceRanges(ctx context.Context) *models.PriceRangeReport {
	report := &models.PriceRangeReport{
		ByBedroomCount: make(map[int]models.PriceStats),
		ByCity:         make(map[string]models.PriceStats),
	}

	available, err := r.estates.FindEstates(ctx, models.EstateFilter{Status: models.EstateStatusAvailable})
	if err != nil {
		r.logger.WithError(err).Error("Failed to load estates for price ranges")
		return report
	}

	var overall []float64
	byBedroom := make(map[int][]float64)
	byCity := make(map[string][]float64)

	for i := range available {
		fv, ok := ExtractFeatures(&available[i])
		if !ok {
			continue
		}
		overall = append(overall, fv.Price)
		bedrooms := int(fv.Bedrooms)
		byBedroom[bedrooms] = append(byBedroom[bedrooms], fv.Price)
		if fv.Location.City != "" {
			byCity[fv.Location.City] = append(byCity[fv.Location.City], fv.Price)
		}
	}

	report.Overall = summarize(overall)
	for k, prices := range byBedroom {
		report.ByBedroomCount[k] = summarize(prices)
	}
	for k, prices := range byCity {
		report.ByCity[k] = summarize(prices)
	}

	r.logger.WithFields(logrus.Fields{
		"estates":        report.Overall.Count,
		"bedroom_groups": len(report.ByBedroomCount),
		"city_groups":    len(report.ByCity),
	}).Debug("Computed price ranges")

	return report
}

func summarize(prices []float64) models.PriceStats {
	if len(prices) == 0 {
		return models.PriceStats{}
	}
	return models.PriceStats{
		Min:   floats.Min(prices),
		Max:   floats.Max(prices),
		Avg:   stat.Mean(prices, nil),
		Count: len(prices),
	}
}
