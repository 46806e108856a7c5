package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/recommend"
	"github.com/temcen/estaterec/pkg/models"
)

type PricingProvider interface {
	EstimateByLocation(ctx context.Context, loc models.UserLocation, features models.PropertyFeatures) *models.PriceRecommendationResult
	EstimateForEstate(ctx context.Context, spec models.EstateSpec) *models.EstatePriceEstimate
	EstimateForExistingEstate(ctx context.Context, estateID uuid.UUID) *models.EstatePriceEstimate
	PriceRanges(ctx context.Context) *models.PriceRangeReport
	NearbyEstates(ctx context.Context, loc models.UserLocation, radiusKm float64) []models.NearbyEstate
}

type PricingHandler struct {
	pricing   PricingProvider
	validator *validator.Validate
	logger    *logrus.Logger
}

func NewPricingHandler(pricing PricingProvider, validate *validator.Validate, logger *logrus.Logger) *PricingHandler {
	return &PricingHandler{
		pricing:   pricing,
		validator: validate,
		logger:    logger,
	}
}

type nearbyQuery struct {
	Lat      float64 `form:"lat" validate:"required,latitude"`
	Lng      float64 `form:"lng" validate:"required,longitude"`
	City     string  `form:"city" validate:"max=200"`
	RadiusKm float64 `form:"radius_km" validate:"omitempty,gt=0,lte=500"`
}

// EstimateByLocation answers POST /price-recommendations.
func (h *PricingHandler) EstimateByLocation(c *gin.Context) {
	var req models.PriceByLocationRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result := h.pricing.EstimateByLocation(c.Request.Context(), *req.UserLocation, *req.PropertyFeatures)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// EstimateForEstate answers POST /price-recommendations/estate.
func (h *PricingHandler) EstimateForEstate(c *gin.Context) {
	var spec models.EstateSpec
	if !h.bindJSON(c, &spec) {
		return
	}

	result := h.pricing.EstimateForEstate(c.Request.Context(), spec)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// EstimateForExistingEstate answers GET /price-recommendations/estate/:estateId.
func (h *PricingHandler) EstimateForExistingEstate(c *gin.Context) {
	estateID, err := uuid.Parse(c.Param("estateId"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ESTATE_ID", "Invalid estate ID format")
		return
	}

	result := h.pricing.EstimateForExistingEstate(c.Request.Context(), estateID)
	switch {
	case result.Success:
		c.JSON(http.StatusOK, result)
	case result.Message == recommend.MessageEstateNotFound:
		c.JSON(http.StatusNotFound, result)
	case result.Message == recommend.MessageEstateLookupFailed:
		c.JSON(http.StatusServiceUnavailable, result)
	default:
		c.JSON(http.StatusBadRequest, result)
	}
}

// PriceRanges answers GET /price-ranges.
func (h *PricingHandler) PriceRanges(c *gin.Context) {
	c.JSON(http.StatusOK, h.pricing.PriceRanges(c.Request.Context()))
}

// NearbyEstates answers GET /estates/nearby?lat=&lng=&city=&radius_km=.
func (h *PricingHandler) NearbyEstates(c *gin.Context) {
	var q nearbyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_QUERY", "lat, lng and radius_km must be numbers")
		return
	}
	if err := h.validator.Struct(q); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	loc := models.UserLocation{City: q.City, Lat: q.Lat, Lng: q.Lng}
	estates := h.pricing.NearbyEstates(c.Request.Context(), loc, q.RadiusKm)

	c.JSON(http.StatusOK, gin.H{
		"result":  len(estates),
		"estates": estates,
	})
}

// bindJSON decodes and validates the body, answering 400 itself on failure.
func (h *PricingHandler) bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST_BODY", "Invalid request body format")
		return false
	}

	if err := h.validator.Struct(dest); err != nil {
		h.logger.WithError(err).Debug("Rejected pricing request")
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}

	return true
}
