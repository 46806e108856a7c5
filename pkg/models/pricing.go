package models

// UserLocation is where the landlord wants to list. City is optional.
type UserLocation struct {
	City string  `json:"city,omitempty"`
	Lat  float64 `json:"lat" validate:"required,latitude"`
	Lng  float64 `json:"lng" validate:"required,longitude"`
}

type PropertyFeatures struct {
	Bedroom  int `json:"bedroom" validate:"min=0,max=50"`
	Bathroom int `json:"bathroom" validate:"min=0,max=50"`
	Floors   int `json:"floors" validate:"min=0,max=200"`
}

type PriceByLocationRequest struct {
	UserLocation     *UserLocation     `json:"user_location" validate:"required"`
	PropertyFeatures *PropertyFeatures `json:"property_features" validate:"required"`
}

// EstateSpec describes a property that has not been listed yet.
type EstateSpec struct {
	Bedroom  int      `json:"bedroom" validate:"min=0,max=50"`
	Bathroom int      `json:"bathroom" validate:"min=0,max=50"`
	Floors   int      `json:"floors" validate:"min=0,max=200"`
	City     string   `json:"city,omitempty"`
	Country  string   `json:"country,omitempty"`
	Lat      *float64 `json:"lat,omitempty" validate:"omitempty,latitude"`
	Lng      *float64 `json:"lng,omitempty" validate:"omitempty,longitude"`
}

type PriceRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// PriceRecommendationResult is the answer of the location based estimator.
// When Success is false only Message is set.
type PriceRecommendationResult struct {
	Success               bool              `json:"success"`
	Message               string            `json:"message,omitempty"`
	RecommendedPriceRange *PriceRange       `json:"recommended_price_range,omitempty"`
	SimilarCount          int               `json:"similar_estates_count,omitempty"`
	LocationInfo          string            `json:"location_info,omitempty"`
	PropertyFeatures      *PropertyFeatures `json:"property_features,omitempty"`
	Explanation           string            `json:"explanation,omitempty"`
}

type ComparableEstate struct {
	Estate   Estate        `json:"estate"`
	Score    float64       `json:"similarity_score"`
	Features FeatureVector `json:"features"`
}

type MarketTrend struct {
	AdjustmentFactor     float64 `json:"adjustment_factor"`
	TransactionsAnalyzed int     `json:"transactions_analyzed"`
	WindowDays           int     `json:"window_days"`
}

// EstatePriceEstimate is the answer of the single-estate estimator.
type EstatePriceEstimate struct {
	Success         bool               `json:"success"`
	Message         string             `json:"message,omitempty"`
	EstimatedPrice  float64            `json:"estimated_price,omitempty"`
	WeightedAverage float64            `json:"weighted_average,omitempty"`
	PriceRange      *PriceRange        `json:"price_range,omitempty"`
	Comparables     []ComparableEstate `json:"comparables,omitempty"`
	MarketTrend     *MarketTrend       `json:"market_trend,omitempty"`
}

type PriceStats struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

type PriceRangeReport struct {
	Overall        PriceStats            `json:"overall"`
	ByBedroomCount map[int]PriceStats    `json:"by_bedroom_count"`
	ByCity         map[string]PriceStats `json:"by_city"`
}

// NearbyEstate is an estate with its great-circle distance to the searched point.
type NearbyEstate struct {
	Estate     Estate  `json:"estate"`
	DistanceKm float64 `json:"distance_km"`
}
