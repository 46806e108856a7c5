package services

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/internal/database"
	"github.com/temcen/estaterec/internal/messaging"
	"github.com/temcen/estaterec/pkg/models"
)

const defaultProbeTimeout = 3 * time.Second

// dependencyCheck probes one backing store. The returned detail is reported
// alongside the status and may be nil.
type dependencyCheck struct {
	name     string
	critical bool
	probe    func(ctx context.Context) (interface{}, error)
}

type HealthService struct {
	logger  *logrus.Logger
	timeout time.Duration
	checks  []dependencyCheck
	pool    *pgxpool.Pool

	dependencyUp    *prometheus.GaugeVec
	lastCheck       *prometheus.GaugeVec
	estatesByStatus *prometheus.GaugeVec
	poolConnections *prometheus.GaugeVec
}

type HealthStatus struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Services    map[string]string      `json:"services"`
	Critical    []string               `json:"critical_failures,omitempty"`
	NonCritical []string               `json:"non_critical_failures,omitempty"`
	Latency     time.Duration          `json:"latency,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

// NewHealthService checks what the engine needs to answer requests: listings
// in Postgres and sessions in hot Redis are critical, while the favorites graph,
// the result cache and the event stream only degrade answers.
func NewHealthService(
	cfg *config.Config,
	logger *logrus.Logger,
	db *database.Database,
	estates *EstateRepository,
	favorites *FavoriteGraph,
	cache *ResultCache,
	bus *messaging.MessageBus,
) *HealthService {
	checks := []dependencyCheck{
		{name: "estate_store", critical: true, probe: func(ctx context.Context) (interface{}, error) {
			return estates.CountByStatus(ctx)
		}},
		{name: "session_store", critical: true, probe: func(ctx context.Context) (interface{}, error) {
			return nil, db.Redis.Hot.Ping(ctx).Err()
		}},
		{name: "favorites_graph", probe: func(ctx context.Context) (interface{}, error) {
			n, err := favorites.CountFavorites(ctx)
			return map[string]int64{"favorites": n}, err
		}},
		{name: "result_cache", probe: func(ctx context.Context) (interface{}, error) {
			return nil, cache.Ping(ctx)
		}},
	}
	if bus != nil {
		checks = append(checks, dependencyCheck{name: "estate_events", probe: func(ctx context.Context) (interface{}, error) {
			return bus.GetMetrics(), nil
		}})
	}

	hs := newHealthService(logger, cfg.Server.RequestTimeout, checks)
	hs.pool = db.PG
	return hs
}

func newHealthService(logger *logrus.Logger, timeout time.Duration, checks []dependencyCheck) *HealthService {
	if timeout <= 0 || timeout > defaultProbeTimeout {
		timeout = defaultProbeTimeout
	}

	return &HealthService{
		logger:  logger,
		timeout: timeout,
		checks:  checks,

		dependencyUp: registerCollector(logger, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "estaterec_dependency_up",
			Help: "Whether a backing store answered its last health probe (1 = up)",
		}, []string{"dependency"})),
		lastCheck: registerCollector(logger, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "estaterec_dependency_last_check_timestamp_seconds",
			Help: "Unix time of the last health probe",
		}, []string{"dependency"})),
		estatesByStatus: registerCollector(logger, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "estaterec_estates",
			Help: "Listings in the estate store, by status",
		}, []string{"status"})),
		poolConnections: registerCollector(logger, prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "estaterec_postgres_pool_connections",
			Help: "PostgreSQL pool connections, by state",
		}, []string{"state"})),
	}
}

type probeResult struct {
	detail interface{}
	err    error
}

// CheckHealth probes every dependency concurrently under one deadline.
func (s *HealthService) CheckHealth() *HealthStatus {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	results := make([]probeResult, len(s.checks))
	var wg sync.WaitGroup
	for i, check := range s.checks {
		wg.Add(1)
		go func(i int, check dependencyCheck) {
			defer wg.Done()
			detail, err := check.probe(ctx)
			results[i] = probeResult{detail: detail, err: err}
		}(i, check)
	}
	wg.Wait()

	status := &HealthStatus{
		Timestamp: start,
		Services:  make(map[string]string, len(s.checks)),
		Details:   make(map[string]interface{}),
	}

	for i, check := range s.checks {
		result := results[i]
		s.lastCheck.WithLabelValues(check.name).Set(float64(start.Unix()))

		if result.err != nil {
			status.Services[check.name] = "unhealthy"
			s.dependencyUp.WithLabelValues(check.name).Set(0)

			entry := s.logger.WithError(result.err).WithField("dependency", check.name)
			if check.critical {
				status.Critical = append(status.Critical, check.name)
				entry.Error("Critical dependency is unhealthy")
			} else {
				status.NonCritical = append(status.NonCritical, check.name)
				entry.Warn("Optional dependency is unhealthy")
			}
			continue
		}

		status.Services[check.name] = "healthy"
		s.dependencyUp.WithLabelValues(check.name).Set(1)
		if result.detail != nil {
			status.Details[check.name] = result.detail
		}
	}

	if counts, ok := status.Details["estate_store"].(map[string]int64); ok {
		for state, n := range counts {
			s.estatesByStatus.WithLabelValues(state).Set(float64(n))
		}
		if counts[string(models.EstateStatusAvailable)] == 0 {
			// Every estimate answers "no listings" until inventory arrives.
			status.NonCritical = append(status.NonCritical, "estate_inventory")
		}
	}

	s.recordPoolStats()

	switch {
	case len(status.Critical) > 0:
		status.Status = "unhealthy"
	case len(status.NonCritical) > 0:
		status.Status = "degraded"
	default:
		status.Status = "healthy"
	}
	status.Latency = time.Since(start)

	return status
}

func (s *HealthService) recordPoolStats() {
	if s.pool == nil {
		return
	}

	stats := s.pool.Stat()
	s.poolConnections.WithLabelValues("acquired").Set(float64(stats.AcquiredConns()))
	s.poolConnections.WithLabelValues("idle").Set(float64(stats.IdleConns()))
	s.poolConnections.WithLabelValues("total").Set(float64(stats.TotalConns()))
	s.poolConnections.WithLabelValues("max").Set(float64(stats.MaxConns()))
}
