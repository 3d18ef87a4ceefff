package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "pitchside"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultKafkaBrokers     = "localhost:9092"
	DefaultKafkaEventsTopic = "pitchside.reservations"

	DefaultCORSAllowedOrigins = "*"

	DefaultRateLimitRPS   = 20
	DefaultRateLimitBurst = 40

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	// Domain defaults. Facilities may override granularity and rounding
	// per record; these apply when they don't.
	DefaultSlotGranularityMin     = 30
	DefaultHoldTTL                = 15 * time.Minute
	DefaultMaxHoldTTL             = 2 * time.Hour
	DefaultOperatorFeeRate        = 0.03
	DefaultPriceRoundingIncrement = 500
)
