package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// EngineMetrics exposes recommendation and pricing activity to Prometheus.
type EngineMetrics struct {
	recommendationsServed *prometheus.CounterVec
	priceEstimates        *prometheus.CounterVec
	operationDuration     *prometheus.HistogramVec
	cacheRequests         *prometheus.CounterVec
	cacheInvalidations    *prometheus.CounterVec
}

func NewEngineMetrics(logger *logrus.Logger) *EngineMetrics {
	m := &EngineMetrics{}

	m.recommendationsServed = registerCollector(logger, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estate_recommendations_served_total",
		Help: "Recommendation lists served, by ranking strategy",
	}, []string{"strategy"}))

	m.priceEstimates = registerCollector(logger, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estate_price_estimates_total",
		Help: "Price estimates computed, by estimator and outcome",
	}, []string{"estimator", "outcome"}))

	m.operationDuration = registerCollector(logger, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "estate_engine_operation_duration_seconds",
		Help:    "Time spent computing recommendations and price estimates",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"}))

	m.cacheRequests = registerCollector(logger, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estate_result_cache_requests_total",
		Help: "Result cache lookups, by cached operation and result",
	}, []string{"operation", "result"}))

	m.cacheInvalidations = registerCollector(logger, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "estate_result_cache_invalidations_total",
		Help: "Cache entries removed after estate events, by event type",
	}, []string{"event_type"}))

	return m
}

// registerCollector registers c, reusing the collector already registered under the same name.
func registerCollector[T prometheus.Collector](logger *logrus.Logger, c T) T {
	if err := prometheus.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		logger.WithError(err).Warn("Failed to register metric")
	}
	return c
}

func (m *EngineMetrics) RecordRecommendation(strategy string, duration time.Duration) {
	m.recommendationsServed.WithLabelValues(strategy).Inc()
	m.operationDuration.WithLabelValues("recommend").Observe(duration.Seconds())
}

func (m *EngineMetrics) RecordPriceEstimate(estimator string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "no_data"
	}
	m.priceEstimates.WithLabelValues(estimator, outcome).Inc()
	m.operationDuration.WithLabelValues(estimator).Observe(duration.Seconds())
}

func (m *EngineMetrics) RecordCacheLookup(operation string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheRequests.WithLabelValues(operation, result).Inc()
}

func (m *EngineMetrics) RecordInvalidation(eventType string, removed int) {
	m.cacheInvalidations.WithLabelValues(eventType).Add(float64(removed))
}
