package models

import (
	"github.com/google/uuid"
)

// Location is the geographic part of a feature vector.
type Location struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// FeatureVector is the numeric/categorical projection of an estate used for comparison.
type FeatureVector struct {
	Price     float64  `json:"price"`
	Bedrooms  float64  `json:"bedrooms"`
	Bathrooms float64  `json:"bathrooms"`
	Floors    float64  `json:"floors"`
	Location  Location `json:"location"`
	Rating    float64  `json:"rating"`
}

// HasCoordinates reports whether both latitude and longitude are set.
func (f FeatureVector) HasCoordinates() bool {
	return f.Location.Lat != 0 && f.Location.Lng != 0
}

// PreferenceProfile is the centroid of the estates a user favorited, reviewed or rented.
type PreferenceProfile struct {
	Price              float64  `json:"price"`
	Bedrooms           float64  `json:"bedrooms"`
	Bathrooms          float64  `json:"bathrooms"`
	Floors             float64  `json:"floors"`
	Rating             float64  `json:"rating"`
	PreferredLocations []string `json:"preferred_locations"`
	EstateCount        int      `json:"estate_count"`
}

// GeneralStatistics is the centroid over every available estate, used for cold start.
type GeneralStatistics struct {
	Price            float64  `json:"price"`
	Bedrooms         float64  `json:"bedrooms"`
	Bathrooms        float64  `json:"bathrooms"`
	Floors           float64  `json:"floors"`
	Rating           float64  `json:"rating"`
	PopularLocations []string `json:"popular_locations"`
	EstateCount      int      `json:"estate_count"`
}

type RecommendationStrategy string

const (
	StrategyPersonalized RecommendationStrategy = "personalized"
	StrategyGeneral      RecommendationStrategy = "general"
	StrategyPopularity   RecommendationStrategy = "popularity"
)

type ScoredEstate struct {
	Estate   Estate                 `json:"estate"`
	Score    float64                `json:"score"`
	Strategy RecommendationStrategy `json:"strategy"`
}

type RecommendationResponse struct {
	Msg             string   `json:"msg"`
	Result          int      `json:"result"`
	Recommendations []Estate `json:"recommendations"`
	CacheHit        bool     `json:"cache_hit"`
}

// RecommendationEvent is published every time a recommendation list is served.
type RecommendationEvent struct {
	EventID   uuid.UUID              `json:"event_id"`
	UserID    uuid.UUID              `json:"user_id"`
	Strategy  RecommendationStrategy `json:"strategy"`
	EstateIDs []uuid.UUID            `json:"estate_ids"`
	Limit     int                    `json:"limit"`
	Timestamp int64                  `json:"timestamp"`
}
