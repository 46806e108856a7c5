package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/temcen/estaterec/internal/config"
	"github.com/temcen/estaterec/internal/database"
	"github.com/temcen/estaterec/internal/handlers"
	"github.com/temcen/estaterec/internal/middleware"
	"github.com/temcen/estaterec/internal/services"
	"github.com/temcen/estaterec/internal/validation"
)

type App struct {
	config   *config.Config
	logger   *logrus.Logger
	db       *database.Database
	services *services.Services
	handlers *handlers.Handlers
	router   *gin.Engine

	stopConsumer context.CancelFunc
	consumerDone sync.WaitGroup
}

func New(cfg *config.Config) (*App, error) {
	app := &App{
		config: cfg,
		logger: setupLogger(cfg),
	}

	schemas, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}

	db, err := database.New(cfg, app.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	svcs, err := services.New(cfg, app.logger, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.services = svcs

	app.handlers = handlers.New(cfg, app.logger, svcs)

	app.router = newRouter(cfg, app.logger, routes{
		handlers: app.handlers,
		tokens:   svcs.Auth,
		limiter:  svcs.RateLimit,
		schemas:  schemas,
	})

	return app, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Logger() *logrus.Logger {
	return a.logger
}

// StartConsumers applies estate events in the background until Shutdown.
func (a *App) StartConsumers() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopConsumer = cancel

	a.consumerDone.Add(1)
	go func() {
		defer a.consumerDone.Done()

		err := a.services.MessageBus.ConsumeEstateEvents(ctx, a.services.EstateEvents.Handle)
		if err != nil && !errors.Is(err, context.Canceled) {
			a.logger.WithError(err).Error("Estate event consumer stopped")
		}
	}()

	a.logger.WithField("topic", a.config.Kafka.Topics.EstateEvents).Info("Estate event consumer started")
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("Shutting down application...")

	if a.stopConsumer != nil {
		a.stopConsumer()

		done := make(chan struct{})
		go func() {
			a.consumerDone.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			a.logger.Warn("Timed out waiting for estate event consumer")
		}
	}

	var errs []error
	if err := a.services.MessageBus.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing message bus")
		errs = append(errs, err)
	}

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Error("Error closing database connections")
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// routes bundles what the HTTP surface needs from the rest of the app.
type routes struct {
	handlers *handlers.Handlers
	tokens   middleware.TokenValidator
	limiter  middleware.RateLimiter
	schemas  *validation.SchemaValidator
}

func newRouter(cfg *config.Config, logger *logrus.Logger, r routes) *gin.Engine {
	if cfg.Server.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.Security.CORS))

	// Health check endpoints (no auth required)
	router.GET("/health", r.handlers.Health.Check)
	router.GET("/health/live", r.handlers.Health.Live)

	if cfg.Monitoring.Enabled {
		router.GET(cfg.Monitoring.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	bodies := middleware.NewValidationMiddleware(r.schemas)

	api := router.Group("/api/v1")
	{
		api.Use(middleware.Auth(r.tokens, logger))
		api.Use(middleware.RateLimit(r.limiter, logger))
		api.Use(middleware.Timeout(cfg.Server.RequestTimeout))

		api.GET("/recommendations", r.handlers.Recommendation.Get)

		pricing := api.Group("/price-recommendations")
		{
			pricing.POST("", bodies.ValidatePriceByLocation(), r.handlers.Pricing.EstimateByLocation)
			pricing.POST("/estate", bodies.ValidateEstateSpec(), r.handlers.Pricing.EstimateForEstate)
			pricing.GET("/estate/:estateId", r.handlers.Pricing.EstimateForExistingEstate)
		}

		api.GET("/price-ranges", r.handlers.Pricing.PriceRanges)
		api.GET("/estates/nearby", r.handlers.Pricing.NearbyEstates)
	}

	return router
}
