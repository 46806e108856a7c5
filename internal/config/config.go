package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Neo4j          Neo4jConfig          `mapstructure:"neo4j"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Pricing        PricingConfig        `mapstructure:"pricing"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig splits traffic the same way the service uses it: hot for sessions and
// rate limiting, warm for computed recommendation and pricing results.
type RedisConfig struct {
	Hot  RedisInstanceConfig `mapstructure:"hot"`
	Warm RedisInstanceConfig `mapstructure:"warm"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type Neo4jConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	GroupID string   `mapstructure:"group_id"`
	Topics  struct {
		EstateEvents         string `mapstructure:"estate_events"`
		EstateEventsDLQ      string `mapstructure:"estate_events_dlq"`
		RecommendationEvents string `mapstructure:"recommendation_events"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string          `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration   `mapstructure:"token_ttl"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Default  int           `mapstructure:"default"`
	Landlord int           `mapstructure:"landlord"`
	Window   time.Duration `mapstructure:"window"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RecommendationConfig struct {
	DefaultLimit int           `mapstructure:"default_limit"`
	MaxLimit     int           `mapstructure:"max_limit"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

// PricingConfig holds the tunable cut-offs of the price estimators.
type PricingConfig struct {
	RadiusKm               float64       `mapstructure:"radius_km"`
	MinCityMatches         int           `mapstructure:"min_city_matches"`
	PoolMinScore           float64       `mapstructure:"pool_min_score"`
	HighRelevanceScore     float64       `mapstructure:"high_relevance_score"`
	MinRelevantComparables int           `mapstructure:"min_relevant_comparables"`
	MaxComparables         int           `mapstructure:"max_comparables"`
	LocationRangeRatio     float64       `mapstructure:"location_range_ratio"`
	EstateMinScore         float64       `mapstructure:"estate_min_score"`
	TopK                   int           `mapstructure:"top_k"`
	GeoDecayKm             float64       `mapstructure:"geo_decay_km"`
	EstateRangeRatio       float64       `mapstructure:"estate_range_ratio"`
	MarketWindow           time.Duration `mapstructure:"market_window"`
	CacheTTL               time.Duration `mapstructure:"cache_ttl"`
}

// DefaultPricingConfig returns the cut-offs the estimators were tuned with.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		RadiusKm:               20,
		MinCityMatches:         3,
		PoolMinScore:           0.3,
		HighRelevanceScore:     0.5,
		MinRelevantComparables: 3,
		MaxComparables:         10,
		LocationRangeRatio:     0.15,
		EstateMinScore:         0.6,
		TopK:                   2,
		GeoDecayKm:             10,
		EstateRangeRatio:       0.10,
		MarketWindow:           90 * 24 * time.Hour,
		CacheTTL:               10 * time.Minute,
	}
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	setDefaults(v)

	// Environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "development")
	v.SetDefault("server.request_timeout", "5s")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_time", "15m")
	v.SetDefault("database.max_lifetime", "1h")
	v.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	v.SetDefault("redis.hot.max_retries", 3)
	v.SetDefault("redis.hot.pool_size", 10)
	v.SetDefault("redis.hot.timeout", "5s")
	v.SetDefault("redis.warm.max_retries", 3)
	v.SetDefault("redis.warm.pool_size", 5)
	v.SetDefault("redis.warm.timeout", "10s")

	// Kafka defaults
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_id", "estaterec-cache-invalidators")
	v.SetDefault("kafka.topics.estate_events", "estate-events")
	v.SetDefault("kafka.topics.estate_events_dlq", "estate-events-dlq")
	v.SetDefault("kafka.topics.recommendation_events", "recommendation-events")

	// Auth defaults
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.rate_limit.default", 1000)
	v.SetDefault("auth.rate_limit.landlord", 5000)
	v.SetDefault("auth.rate_limit.window", "1h")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// Recommendation defaults
	v.SetDefault("recommendation.default_limit", 10)
	v.SetDefault("recommendation.max_limit", 100)
	v.SetDefault("recommendation.cache_ttl", "15m")

	// Pricing defaults
	pricing := DefaultPricingConfig()
	v.SetDefault("pricing.radius_km", pricing.RadiusKm)
	v.SetDefault("pricing.min_city_matches", pricing.MinCityMatches)
	v.SetDefault("pricing.pool_min_score", pricing.PoolMinScore)
	v.SetDefault("pricing.high_relevance_score", pricing.HighRelevanceScore)
	v.SetDefault("pricing.min_relevant_comparables", pricing.MinRelevantComparables)
	v.SetDefault("pricing.max_comparables", pricing.MaxComparables)
	v.SetDefault("pricing.location_range_ratio", pricing.LocationRangeRatio)
	v.SetDefault("pricing.estate_min_score", pricing.EstateMinScore)
	v.SetDefault("pricing.top_k", pricing.TopK)
	v.SetDefault("pricing.geo_decay_km", pricing.GeoDecayKm)
	v.SetDefault("pricing.estate_range_ratio", pricing.EstateRangeRatio)
	v.SetDefault("pricing.market_window", pricing.MarketWindow.String())
	v.SetDefault("pricing.cache_ttl", pricing.CacheTTL.String())

	// Monitoring defaults
	v.SetDefault("monitoring.enabled", true)
	v.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("security.cors.allowed_headers", []string{"*"})
}
